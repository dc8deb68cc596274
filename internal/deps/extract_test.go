package deps

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_ReferenceDeclaration(t *testing.T) {
	text := "use work.filter_pkg.all;\nu1 : entity filter_pkg.comb_stage(rtl)\n"

	got, err := Extract(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, []string{"filter_pkg"}, got.Packages)
	assert.Equal(t, []string{"comb_stage"}, got.Modules)
}

func TestExtract_Lines(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		packages []string
		modules  []string
	}{
		{name: "package_without_all", line: "use work.filter_pkg;", packages: []string{"filter_pkg"}},
		{name: "uppercase_markers", line: "USE WORK.FILTER_PKG.ALL;", packages: []string{"FILTER_PKG"}},
		{name: "library_clause_on_same_line", line: "library dsp; use dsp.fir_pkg.all;", packages: []string{"fir_pkg"}},
		{name: "ieee_package_ignored", line: "use ieee.numeric_std.all;"},
		{name: "instance_no_architecture", line: "u2 : entity work.integrator", modules: []string{"integrator"}},
		{name: "instance_generic_map_inline", line: "u3 : entity work.comb_stage generic map (W => filter_pkg.W)", modules: []string{"comb_stage"}},
		{name: "instance_without_library_ignored", line: "u4 : entity downsampler port map ("},
		{name: "entity_header_with_inline_port", line: "entity alpha is port (clk : in bit);"},
		{name: "instance_without_entity_keyword", line: "u1 : filter_pkg.comb_stage(rtl)"},
		{name: "port_declaration_ignored", line: "clk : in std_logic;"},
		{name: "entity_header_ignored", line: "entity cic_decimator is"},
		{name: "comment_ignored", line: "-- u5 : entity work.old_stage(rtl)"},
		{name: "component_instance_ignored", line: "u6 : comb_stage port map ("},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(strings.NewReader(tt.line))
			require.NoError(t, err)
			if tt.packages == nil {
				tt.packages = []string{}
			}
			if tt.modules == nil {
				tt.modules = []string{}
			}
			assert.Equal(t, tt.packages, got.Packages)
			assert.Equal(t, tt.modules, got.Modules)
		})
	}
}

func TestExtract_OneLineEntityHeader(t *testing.T) {
	text := strings.Join([]string{
		"use work.filter_pkg.all;",
		"entity alpha is port (clk : in bit);",
		"end entity;",
		"u1 : entity work.comb_stage(rtl);",
	}, "\n")

	got, err := Extract(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, []string{"filter_pkg"}, got.Packages)
	assert.Equal(t, []string{"comb_stage"}, got.Modules)
}

func TestExtract_DeduplicatesKeepingFirstSeen(t *testing.T) {
	text := strings.Join([]string{
		"use work.b_pkg.all;",
		"use work.a_pkg.all;",
		"use work.B_PKG.all;",
		"u1 : entity work.stage_b(rtl)",
		"u2 : entity work.stage_a(rtl)",
		"u3 : entity work.stage_b(rtl)",
	}, "\n")

	got, err := Extract(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, []string{"b_pkg", "a_pkg"}, got.Packages)
	assert.Equal(t, []string{"stage_b", "stage_a"}, got.Modules)
}

func TestExtract_Idempotent(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "work", "cic_decimator.vhdl"))
	require.NoError(t, err)

	first, err := Extract(bytes.NewReader(data))
	require.NoError(t, err)
	second, err := Extract(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"filter_pkg"}, first.Packages)
	assert.Equal(t, []string{"integrator", "comb_stage"}, first.Modules)
}

func TestExtract_LeafModule(t *testing.T) {
	got, err := Extract(strings.NewReader("entity leaf is\nend entity leaf;\n"))
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestExtractFile_Missing(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "nope.vhdl"))
	assert.ErrorIs(t, err, ErrDeclarationNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTopFile(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "top.vhdl"), TopFile(dir, "top"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "top.vhd"), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "top.vhd"), TopFile(dir, "top"))
}

func TestResolve_Golden(t *testing.T) {
	plan, err := Resolve(filepath.Join("testdata", "work"), "cic_decimator")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, plan.WriteReport(&buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "cic_decimator_plan", buf.Bytes())
}
