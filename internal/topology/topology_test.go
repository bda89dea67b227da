package topology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-crossover/internal/iir"
	"github.com/tphakala/go-audio-crossover/internal/testutil"
	"github.com/tphakala/go-audio-crossover/internal/topology"
)

// bindFixtures attaches the fixture sections to the first n LR4 pairs.
func bindFixtures(ch *topology.Channel, n int, lp, hp []iir.Coefficients) {
	for i := range n {
		lp[i] = testutil.LowpassFixture(i)
		hp[i] = testutil.HighpassFixture(i)
		ch.Lowpass[i].Bind(&lp[i])
		ch.Highpass[i].Bind(&hp[i])
	}
}

func TestSelect_RejectsUnsupportedBands(t *testing.T) {
	for _, bands := range []int{-1, 0, 1, 5, 8} {
		s, err := topology.Select(bands)
		require.ErrorIs(t, err, topology.ErrUnsupportedBands, "bands=%d", bands)
		assert.Nil(t, s)
	}
}

func TestSplit_IdentitySectionsPassImpulse(t *testing.T) {
	for bands := topology.MinBands; bands <= topology.MaxBands; bands++ {
		t.Run("bands", func(t *testing.T) {
			split, err := topology.Select(bands)
			require.NoError(t, err)

			ident := iir.Identity()
			var ch topology.Channel
			for i := range topology.LR4Count(bands) {
				ch.Lowpass[i].Bind(&ident)
				ch.Highpass[i].Bind(&ident)
			}

			impulse := testutil.Impulse(8, 1<<30)
			for n, x := range impulse {
				var out [topology.MaxBands]int32
				split(&ch, x, &out)
				for b := range bands {
					assert.Equal(t, x, out[b], "bands=%d band=%d sample=%d", bands, b, n)
				}
			}
		})
	}
}

func TestSplit2_MatchesIndividualFilters(t *testing.T) {
	split, err := topology.Select(2)
	require.NoError(t, err)

	var ch topology.Channel
	lp, hp := make([]iir.Coefficients, 1), make([]iir.Coefficients, 1)
	bindFixtures(&ch, 1, lp, hp)

	var refLP, refHP iir.LR4
	refLP.Bind(&lp[0])
	refHP.Bind(&hp[0])

	for _, x := range testutil.Noise(256, 1<<29, 11) {
		var out [topology.MaxBands]int32
		split(&ch, x, &out)
		require.Equal(t, refLP.Process(x), out[0])
		require.Equal(t, refHP.Process(x), out[1])
	}
}

func TestSplit3_CascadesLowBranch(t *testing.T) {
	split, err := topology.Select(3)
	require.NoError(t, err)

	var ch topology.Channel
	lp, hp := make([]iir.Coefficients, 2), make([]iir.Coefficients, 2)
	bindFixtures(&ch, 2, lp, hp)

	var lp0, hp0, lp1, hp1 iir.LR4
	lp0.Bind(&lp[0])
	hp0.Bind(&hp[0])
	lp1.Bind(&lp[1])
	hp1.Bind(&hp[1])

	for _, x := range testutil.Noise(256, 1<<29, 13) {
		var out [topology.MaxBands]int32
		split(&ch, x, &out)

		lo := lp0.Process(x)
		require.Equal(t, lp1.Process(lo), out[0])
		require.Equal(t, hp1.Process(lo), out[1])
		require.Equal(t, hp0.Process(x), out[2])
	}
}

func TestSplit4_SplitsMiddleFirst(t *testing.T) {
	split, err := topology.Select(4)
	require.NoError(t, err)

	var ch topology.Channel
	lp, hp := make([]iir.Coefficients, 3), make([]iir.Coefficients, 3)
	bindFixtures(&ch, 3, lp, hp)

	var ref [2][3]iir.LR4
	for i := range 3 {
		ref[0][i].Bind(&lp[i])
		ref[1][i].Bind(&hp[i])
	}

	for _, x := range testutil.Noise(256, 1<<29, 17) {
		var out [topology.MaxBands]int32
		split(&ch, x, &out)

		lo := ref[0][1].Process(x)
		hi := ref[1][1].Process(x)
		require.Equal(t, ref[0][0].Process(lo), out[0])
		require.Equal(t, ref[1][0].Process(lo), out[1])
		require.Equal(t, ref[0][2].Process(hi), out[2])
		require.Equal(t, ref[1][2].Process(hi), out[3])
	}
}

func TestChannel_Reset(t *testing.T) {
	var ch topology.Channel
	lp, hp := make([]iir.Coefficients, 3), make([]iir.Coefficients, 3)
	bindFixtures(&ch, 3, lp, hp)
	require.True(t, ch.Bound())

	ch.Reset()
	assert.False(t, ch.Bound())

	var out [topology.MaxBands]int32
	split, err := topology.Select(4)
	require.NoError(t, err)
	split(&ch, 12345, &out)
	assert.Equal(t, [topology.MaxBands]int32{12345, 12345, 12345, 12345}, out)
}

func TestPassthrough(t *testing.T) {
	var out [topology.MaxBands]int32
	topology.Passthrough(-7, &out, 3)
	assert.Equal(t, [topology.MaxBands]int32{-7, -7, -7, 0}, out)
}

func TestCrossoverIndex(t *testing.T) {
	assert.Equal(t, 0, topology.CrossoverIndex(2, 0))

	// 3-way splits off the top band first.
	assert.Equal(t, 1, topology.CrossoverIndex(3, 0))
	assert.Equal(t, 0, topology.CrossoverIndex(3, 1))

	// 4-way splits in the middle first.
	assert.Equal(t, 0, topology.CrossoverIndex(4, 0))
	assert.Equal(t, 1, topology.CrossoverIndex(4, 1))
	assert.Equal(t, 2, topology.CrossoverIndex(4, 2))
}
