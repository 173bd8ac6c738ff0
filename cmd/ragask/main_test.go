package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragtex/internal/rag"
	"ragtex/internal/types"
)

type cannedChat struct {
	reply string
}

func (c *cannedChat) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return schema.AssistantMessage(c.reply, nil), nil
}

func cannedFactory(reply string) chatFactory {
	return func(ctx context.Context, cfg *types.Config) (rag.Generator, error) {
		return &cannedChat{reply: reply}, nil
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(doc, []byte("The mass-energy relation links energy and mass."), 0644))

	opts := &options{
		configPath: filepath.Join(dir, "config.json"),
		question:   "How are energy and mass linked?",
		k:          1,
		files:      []string{doc},
	}
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), opts, cannedFactory("Energy: $E = mc^2$, see α."), &stdout, &stderr))

	want := "Energy: \\(E = mc^{2}\\), see \\(\\alpha\\).\n\nSources:\n[1] " + doc + "#0\n"
	assert.Equal(t, want, stdout.String())
}

func TestRun_PersistentStore(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	storePath := filepath.Join(dir, "vectors.db")
	require.NoError(t, os.WriteFile(configPath, []byte("store_path: "+storePath+"\ncollection: papers\n"), 0644))

	doc := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(doc, []byte("Eigenvalues of a symmetric matrix are real."), 0644))

	var stdout, stderr bytes.Buffer
	opts := &options{configPath: configPath, question: "eigenvalues", files: []string{doc}}
	require.NoError(t, run(context.Background(), opts, cannedFactory("Real."), &stdout, &stderr))

	// second run answers from the stored chunks alone
	stdout.Reset()
	opts = &options{configPath: configPath, question: "eigenvalues symmetric"}
	require.NoError(t, run(context.Background(), opts, cannedFactory("Real."), &stdout, &stderr))
	assert.Contains(t, stdout.String(), "[1] "+doc+"#0")
}

func TestRun_NoInput(t *testing.T) {
	opts := &options{configPath: filepath.Join(t.TempDir(), "config.json"), question: "q"}
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), opts, cannedFactory(""), &stdout, &stderr)
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidInput, types.CodeOf(err))
}

func TestParseFlags(t *testing.T) {
	var out bytes.Buffer
	opts, err := parseFlags([]string{"-q", "what?", "-k", "3", "a.pdf", "b.txt"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "what?", opts.question)
	assert.Equal(t, 3, opts.k)
	assert.Equal(t, []string{"a.pdf", "b.txt"}, opts.files)

	_, err = parseFlags([]string{"a.pdf"}, &out)
	assert.Error(t, err)
}
