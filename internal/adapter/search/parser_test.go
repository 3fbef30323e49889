package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfind/config"
)

func newTestParser() *Parser {
	cfg := config.DefaultConfig()
	p := NewParser(cfg.Aliases.TypeAliases, []string{"pdf", "docx", "xlsx", "dwg", "txt"}, cfg.Features)
	p.SetDirProbe(func(path string) bool { return false })
	return p
}

func TestParse_LatestStripped(t *testing.T) {
	p := newTestParser()

	q := p.Parse("latest fault current")
	assert.True(t, q.LatestRequested)
	require.Len(t, q.TextClauses, 1)
	assert.Equal(t, []string{"fault current"}, q.TextClauses[0].Options)
}

func TestParse_LatestWholeWordOnly(t *testing.T) {
	p := newTestParser()

	q := p.Parse("latestnews")
	assert.False(t, q.LatestRequested, "latest must match as a whole word")
	require.Len(t, q.TextClauses, 1)
}

func TestParse_LatestAloneIsBlank(t *testing.T) {
	p := newTestParser()

	q := p.Parse("latest")
	assert.True(t, q.LatestRequested)
	assert.True(t, q.Blank(), "bare latest carries nothing to match on")
}

func TestParse_BlankQuery(t *testing.T) {
	p := newTestParser()

	assert.True(t, p.Parse("").Blank())
	assert.True(t, p.Parse("   ").Blank())
}

func TestParse_ClauseSplitting(t *testing.T) {
	p := newTestParser()

	q := p.Parse("spec :: electrical panel")
	require.Len(t, q.TextClauses, 2)
	assert.Equal(t, []string{"spec"}, q.TextClauses[0].Options)
	assert.Equal(t, []string{"electrical panel"}, q.TextClauses[1].Options)
}

func TestParse_RegexPrefix(t *testing.T) {
	p := newTestParser()

	q := p.Parse(`re:^FPL.*\.pdf$`)
	assert.Equal(t, `^FPL.*\.pdf$`, q.RegexPattern)
	assert.Empty(t, q.TextClauses)
}

func TestParse_RegexSlashes(t *testing.T) {
	p := newTestParser()

	q := p.Parse(`/fpl_\d+/`)
	assert.Equal(t, `fpl_\d+`, q.RegexPattern)
}

func TestParse_FirstRegexWins(t *testing.T) {
	p := newTestParser()

	q := p.Parse(`re:one :: re:two`)
	assert.Equal(t, "one", q.RegexPattern)
	assert.Empty(t, q.TextClauses, "parts after a regex part are ignored")
}

func TestParse_PipeOrGroup(t *testing.T) {
	p := newTestParser()

	q := p.Parse("panel|switchboard")
	require.Len(t, q.TextClauses, 1)
	assert.Equal(t, []string{"panel", "switchboard"}, q.TextClauses[0].Options)
}

func TestParse_WordOrGroup(t *testing.T) {
	p := newTestParser()

	q := p.Parse("panel or switchboard")
	require.Len(t, q.TextClauses, 1)
	assert.Equal(t, []string{"panel", "switchboard"}, q.TextClauses[0].Options)
}

func TestParse_TypeFilterSingle(t *testing.T) {
	p := newTestParser()

	q := p.Parse("pdf")
	assert.Empty(t, q.TextClauses)
	assert.Contains(t, q.AllowedExtensions, "pdf")
}

func TestParse_TypeFilterAliasGroup(t *testing.T) {
	p := newTestParser()

	q := p.Parse("word|excel")
	assert.Empty(t, q.TextClauses)
	for _, ext := range []string{"doc", "docx", "xls", "xlsx", "xlsm"} {
		assert.Contains(t, q.AllowedExtensions, ext)
	}
}

func TestParse_MixedGroupDemotesToText(t *testing.T) {
	p := newTestParser()

	// One unresolvable option demotes the whole group.
	q := p.Parse("pdf|invoice")
	assert.Empty(t, q.AllowedExtensions)
	require.Len(t, q.TextClauses, 1)
	assert.Equal(t, []string{"pdf", "invoice"}, q.TextClauses[0].Options)
}

func TestParse_TypeFilterPlusClause(t *testing.T) {
	p := newTestParser()

	q := p.Parse("pdf :: fault current")
	assert.Contains(t, q.AllowedExtensions, "pdf")
	require.Len(t, q.TextClauses, 1)
}

func TestParse_OverridePath(t *testing.T) {
	cfg := config.DefaultConfig()
	p := NewParser(cfg.Aliases.TypeAliases, []string{"pdf"}, cfg.Features)
	p.SetDirProbe(func(path string) bool { return path == `C:\Projects\X` })

	q := p.Parse(`C:\Projects\X :: drawings`)
	assert.Equal(t, `C:\Projects\X`, q.OverridePath)
	assert.Contains(t, q.AllowedExtensions, "dwg")
	assert.Contains(t, q.AllowedExtensions, "dxf")
	assert.Empty(t, q.TextClauses)
}

func TestParse_OverridePathMustExist(t *testing.T) {
	p := newTestParser() // probe always false

	q := p.Parse(`C:\Projects\X :: drawings`)
	assert.Empty(t, q.OverridePath)
	// The non-directory first part stays a text clause.
	require.Len(t, q.TextClauses, 1)
	assert.Equal(t, []string{`C:\Projects\X`}, q.TextClauses[0].Options)
}

func TestParse_FeatureFlagsOff(t *testing.T) {
	cfg := config.DefaultConfig()
	flags := cfg.Features
	flags.Regex = false
	flags.TypeFilters = false
	flags.Latest = false
	p := NewParser(cfg.Aliases.TypeAliases, []string{"pdf"}, flags)
	p.SetDirProbe(func(string) bool { return false })

	q := p.Parse("latest pdf")
	assert.False(t, q.LatestRequested)
	assert.Empty(t, q.AllowedExtensions)
	require.Len(t, q.TextClauses, 1)
	assert.Equal(t, []string{"latest pdf"}, q.TextClauses[0].Options)

	q = p.Parse("re:abc")
	assert.Empty(t, q.RegexPattern)
	require.Len(t, q.TextClauses, 1)
}
