package cli

import (
	"bytes"
	"errors"
	"testing"

	memerrors "github.com/chenxu233/memexia/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestExitCodeNil(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
}

func TestExitCodeUserFacing(t *testing.T) {
	assert.Equal(t, 1, ExitCode(memerrors.NothingToCommitErr()))
	assert.Equal(t, 1, ExitCode(memerrors.NotARepositoryErr("/tmp/x")))
	assert.Equal(t, 1, ExitCode(memerrors.AlreadyExistsErr("/tmp/x")))
}

func TestExitCodeStoreFailure(t *testing.T) {
	assert.Equal(t, 2, ExitCode(memerrors.StoreFailureErr(errors.New("boom"), "add_node")))
}

func TestExitCodeUnknownError(t *testing.T) {
	assert.Equal(t, 1, ExitCode(errors.New("plain error")))
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, errors.New("something failed"))
	assert.Equal(t, "Error: something failed\n", buf.String())
}

func TestTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"ID", "TITLE"}, [][]string{
		{"1", "Short"},
		{"2", "A longer title"},
	})
	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "A longer title")
}
