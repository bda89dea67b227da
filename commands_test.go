package crossover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-crossover/internal/testutil"
)

func TestHandleCommand_SetThenGet(t *testing.T) {
	f, _ := newFilter(t, FormatS16LE, 2)
	blob := makeBlob(t, 3, []int32{0, -1}, testutil.ResponseFixture(3))

	reply, err := f.HandleCommand(CmdSetConfig, blob)
	require.NoError(t, err)
	assert.Nil(t, reply)

	reply, err = f.HandleCommand(CmdGetConfig, make([]byte, MaxBlobSize))
	require.NoError(t, err)
	assert.Equal(t, blob, reply)
}

func TestHandleCommand_Errors(t *testing.T) {
	f, _ := newFilter(t, FormatS16LE, 1)

	_, err := f.HandleCommand(CmdGetConfig, make([]byte, MaxBlobSize))
	require.ErrorIs(t, err, ErrNoConfig)

	_, err = f.HandleCommand(CmdSetConfig, nil)
	require.ErrorIs(t, err, ErrConfigMalformed)

	blob := makeBlob(t, 2, []int32{0}, testutil.ResponseFixture(2))
	_, err = f.HandleCommand(CmdSetConfig, blob)
	require.NoError(t, err)

	_, err = f.HandleCommand(CmdGetConfig, make([]byte, len(blob)-1))
	require.ErrorIs(t, err, ErrBufferTooSmall)

	_, err = f.HandleCommand(Command(42), nil)
	require.ErrorIs(t, err, ErrUnknownCommand)
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "get_config", CmdGetConfig.String())
	assert.Equal(t, "set_config", CmdSetConfig.String())
	assert.Equal(t, "command(9)", Command(9).String())
}

func TestSetConfig_ConcurrentWithProcess(t *testing.T) {
	f, _ := newFilter(t, FormatS16LE, 1)
	filtered := makeBlob(t, 2, []int32{0}, testutil.ResponseFixture(2))
	identity := makeBlob(t, 2, []int32{0}, testutil.IdentityResponse(2))

	source := NewStream(-1, FormatS16LE, 1, 64)
	sinks := makeSinks(FormatS16LE, 1, 2, 64)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := range 200 {
			blob := filtered
			if i%2 == 1 {
				blob = identity
			}
			// Busy rejections are expected while an update is pending.
			_ = f.SetConfig(blob)
		}
	}()

	for range 200 {
		source.Write(make([]int32, 64))
		_, err := f.Process(source, sinks)
		require.NoError(t, err)
		for _, s := range sinks {
			s.Clear()
		}
	}
	<-done

	n, err := f.GetConfig(make([]byte, MaxBlobSize))
	require.NoError(t, err)
	assert.Equal(t, len(filtered), n)
}
