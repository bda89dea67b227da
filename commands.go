package crossover

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-crossover/internal/config"
)

// Command is a control request delivered by the host transport.
type Command int

// Control commands.
const (
	// CmdGetConfig reads the active configuration blob.
	CmdGetConfig Command = iota + 1

	// CmdSetConfig submits a new configuration blob.
	CmdSetConfig
)

// ErrUnknownCommand is returned by HandleCommand for unsupported commands.
var ErrUnknownCommand = errors.New("unknown crossover command")

func (c Command) String() string {
	switch c {
	case CmdGetConfig:
		return "get_config"
	case CmdSetConfig:
		return "set_config"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// SetConfig validates blob and queues it. The first configuration becomes
// active at the next Process call; later ones wait as pending until then,
// and a further submission before that fails with ErrConfigBusy. Any error
// leaves the active and pending configurations untouched.
func (f *Filter) SetConfig(blob []byte) error {
	cfg, err := config.Parse(blob, f.capacity)
	if err != nil {
		return err
	}
	if err := f.slot.Submit(cfg); err != nil {
		return fmt.Errorf("%w: retry after the next process call", err)
	}

	f.logger.Info("crossover configuration received",
		"bytes", cfg.Size(), "bands", cfg.Bands(), "channels", cfg.ChannelsInConfig,
		"responses", cfg.NumberOfResponses, "state", f.slot.State().String())
	return nil
}

// GetConfig copies the active configuration blob into dst and returns its
// length. When dst is too short it returns the required length together
// with ErrBufferTooSmall.
func (f *Filter) GetConfig(dst []byte) (int, error) {
	cfg := f.slot.Active()
	if cfg == nil {
		return 0, ErrNoConfig
	}
	if len(dst) < cfg.Size() {
		return cfg.Size(), fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, cfg.Size(), len(dst))
	}
	return copy(dst, cfg.Bytes()), nil
}

// HandleCommand dispatches a control command. For CmdGetConfig, data is the
// reply buffer and the filled prefix is returned. For CmdSetConfig, data is
// the blob and the reply is empty.
func (f *Filter) HandleCommand(cmd Command, data []byte) ([]byte, error) {
	switch cmd {
	case CmdGetConfig:
		n, err := f.GetConfig(data)
		if err != nil {
			return nil, err
		}
		return data[:n], nil
	case CmdSetConfig:
		return nil, f.SetConfig(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}
