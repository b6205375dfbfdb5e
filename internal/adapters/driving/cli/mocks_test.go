package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/syllabusmatch/internal/adapters/driving/inbox"
	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
)

type mockMatchingService struct {
	result   *domain.ProcessResult
	record   domain.SyllabusRecord
	err      error
	gotText  string
	gotOwner string
}

func (m *mockMatchingService) Process(_ context.Context, rawText, ownerID string) (*domain.ProcessResult, error) {
	m.gotText = rawText
	m.gotOwner = ownerID
	return m.result, m.err
}

func (m *mockMatchingService) Extract(rawText string) domain.SyllabusRecord {
	m.gotText = rawText
	return m.record
}

type mockCorpusService struct {
	signatures []domain.Signature
	err        error
	gotLimit   int
}

func (m *mockCorpusService) Recent(_ context.Context, limit int) ([]domain.Signature, error) {
	m.gotLimit = limit
	return m.signatures, m.err
}

type mockSettingsService struct {
	settings *domain.Settings
	err      error
	setKey   string
	setValue any
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) Set(key string, value any) error {
	m.setKey = key
	m.setValue = value
	return m.err
}

// useServices injects s for the duration of the test.
func useServices(t *testing.T, s Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() { SetServices(Services{}) })
}

// executeCommand runs the root command with args and returns combined output.
// Flag variables are reset so tests do not leak into each other.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	processOwner, processJSON, extractJSON = "", false, false
	corpusLimit, corpusJSON = 20, false
	watchOwner, watchDebounce = "", inbox.DefaultDebounce
	verbose = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
