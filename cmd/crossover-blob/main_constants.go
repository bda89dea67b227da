package main

// Default command-line flag values
const (
	defaultSampleRate = 48000.0 // DAT/DVD sample rate
	defaultChannels   = 2       // Stereo
	defaultFreqs      = "2500"  // Woofer/tweeter split
)

// Output formats
const (
	formatBinary = "bin"
	formatHex    = "hex"
	formatC      = "c"
)

// Bytes per line in text dumps
const bytesPerLine = 16
