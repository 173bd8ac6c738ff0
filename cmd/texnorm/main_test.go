package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragtex/internal/types"
)

func TestRun_Stdin(t *testing.T) {
	opts := &options{configPath: filepath.Join(t.TempDir(), "missing.json")}
	var stdout, stderr bytes.Buffer

	require.NoError(t, run(opts, strings.NewReader("$x^2$"), &stdout, &stderr))
	assert.Equal(t, `\(x^{2}\)`, stdout.String())
}

func TestRun_Files(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "answer.md")
	out := filepath.Join(dir, "answer.tex")
	require.NoError(t, os.WriteFile(in, []byte("$$E$$"), 0644))

	opts := &options{configPath: filepath.Join(dir, "config.json"), in: in, out: out, verbose: true}
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(opts, strings.NewReader(""), &stdout, &stderr))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `\[E\]`, string(data))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "output written")
}

func TestRun_ModeOverride(t *testing.T) {
	opts := &options{configPath: filepath.Join(t.TempDir(), "config.json"), mode: "off"}
	var stdout, stderr bytes.Buffer

	require.NoError(t, run(opts, strings.NewReader(`\alpha + \beta = \gamma`), &stdout, &stderr))
	assert.Equal(t, `\[\alpha + \beta = \gamma\]`, stdout.String())
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	smallConfig := filepath.Join(dir, "small.json")
	require.NoError(t, os.WriteFile(smallConfig, []byte(`{"max_answer_bytes": 4}`), 0644))

	tests := []struct {
		name  string
		opts  *options
		input string
		want  types.ErrorCode
	}{
		{"input too large", &options{configPath: smallConfig}, "$x^2$", types.ErrInputTooLarge},
		{"bad mode", &options{configPath: filepath.Join(dir, "none.json"), mode: "sometimes"}, "x", types.ErrConfig},
		{"missing input file", &options{configPath: filepath.Join(dir, "none.json"), in: filepath.Join(dir, "nope.txt")}, "", types.ErrFileNotFound},
		{"invalid utf-8", &options{configPath: filepath.Join(dir, "none.json")}, "\xff", types.ErrEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.opts, strings.NewReader(tt.input), &stdout, &stderr)
			require.Error(t, err)
			assert.Equal(t, tt.want, types.CodeOf(err))
			assert.Empty(t, stdout.String())
		})
	}
}

func TestReadInputAtLimit(t *testing.T) {
	got, err := readInput("", strings.NewReader("abcd"), 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", got)
}

func TestParseFlags(t *testing.T) {
	var out bytes.Buffer
	opts, err := parseFlags([]string{"-in", "a.md", "-mode", "whitelist", "-v"}, &out)
	require.NoError(t, err)
	assert.Equal(t, &options{in: "a.md", mode: "whitelist", verbose: true}, opts)

	_, err = parseFlags([]string{"extra"}, &out)
	assert.Error(t, err)
}
