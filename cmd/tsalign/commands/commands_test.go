package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tsalign/cmd/tsalign/commands"
	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
)

// inversionPair holds a query whose middle is the reverse complement of the
// reference middle.
const inversionPair = ">chr1 reference\nTTGACAAACCCGTTCA\n>read1\nTTGACGGGTTTGTTCA\n"

type fixture struct {
	dir    string
	config string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "tsalign.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("observability:\n  log_level: error\n"), 0o600))

	return fixture{dir: dir, config: configPath}
}

func (f fixture) file(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := commands.NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", f.config, "--no-color"}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func TestAlign_PrintsCostAndOperations(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	pair := f.file(t, "pair.fa", inversionPair)

	out, err := f.run(t, "align", pair, "--stats=false")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "chr1 vs read1: cost 3", lines[0])
	assert.Contains(t, lines[1], "TemplateSwitchEntrance(")
}

func TestAlign_NoTemplateSwitches(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	pair := f.file(t, "pair.fa", inversionPair)

	out, err := f.run(t, "align", pair, "--no-ts", "--stats=false")
	require.NoError(t, err)
	assert.NotContains(t, out, "TemplateSwitch")
	assert.NotContains(t, out, "cost 3\n")
}

func TestAlign_TwoFilesRenderAndSave(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ref := f.file(t, "ref.fa", ">chr1\nACGTACGT\n")
	qry := f.file(t, "qry.fa", ">read1\nACGAACGT\n")
	saved := filepath.Join(f.dir, "result.yaml.lz4")

	out, err := f.run(t, "align", ref, qry, "--render", "-o", saved)
	require.NoError(t, err)
	assert.Contains(t, out, "ACGTACGT")
	assert.Contains(t, out, "|||.||||")
	assert.Contains(t, out, "Closed nodes")

	result, err := alignment.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, cost.Cost(2), result.TotalCost)
	assert.Equal(t, "chr1", result.ReferenceName)

	shown, err := f.run(t, "show", saved, ref, qry, "--stats")
	require.NoError(t, err)
	assert.Contains(t, shown, "chr1 vs read1: cost 2")
	assert.Contains(t, shown, "|||.||||")
	assert.Contains(t, shown, "STATISTIC")
}

func TestAlign_CostLimitExitCode(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	pair := f.file(t, "pair.fa", inversionPair)

	_, err := f.run(t, "align", pair, "--cost-limit", "1")
	require.Error(t, err)
	assert.Equal(t, commands.ExitAborted, commands.ExitCode(err))
}

func TestAlign_InvalidInput(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	pair := f.file(t, "pair.fa", ">a\nACGX\n>b\nACG\n")

	_, err := f.run(t, "align", pair)
	require.Error(t, err)
	assert.Equal(t, commands.ExitFailure, commands.ExitCode(err))

	_, err = f.run(t, "align", f.file(t, "ok.fa", ">a\nACG\n>b\nACG\n"), "--node-ord", "random")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node_ord")
}

func TestCosts_Canonical(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	file := f.file(t, "offset.txt", "-inf   -5 6\ninf 0  inf\n")

	out, err := f.run(t, "costs", file, "--intervals")
	require.NoError(t, err)
	assert.Equal(t, "-inf -5   6\n inf  0 inf\nfinite on [-5, 5]\n", out)

	out, err = f.run(t, "costs", "--default", "length")
	require.NoError(t, err)
	assert.Equal(t, "-inf 0\n inf 0\n", out)

	_, err = f.run(t, "costs", "--default", "exit")
	require.ErrorIs(t, err, commands.ErrUnknownDefaultFunction)

	_, err = f.run(t, "costs")
	require.ErrorIs(t, err, commands.ErrNoFunction)

	_, err = f.run(t, "costs", f.file(t, "bad.txt", "0 1\n2 3\n"))
	require.ErrorIs(t, err, cost.ErrParse)

	_, err = f.run(t, "costs", f.file(t, "negative.txt", "-inf 0\n  -5 -inf\n"))
	require.ErrorIs(t, err, cost.ErrParse)
	assert.Contains(t, err.Error(), "must not be negative")
}
