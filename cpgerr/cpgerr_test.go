package cpgerr_test

import (
	"errors"
	"testing"

	"github.com/cpgkit/cpg/cpgerr"
	"github.com/stretchr/testify/assert"
)

func TestParseFailureUnwraps(t *testing.T) {
	cause := errors.New("unexpected token")
	err := &cpgerr.ParseFailure{File: "a.go", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "a.go")
}

func TestTranslationExceptionUnwraps(t *testing.T) {
	cause := errors.New("no top-level declaration")
	err := &cpgerr.TranslationException{File: "b.py", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "b.py")
}

func TestPassFailureUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := &cpgerr.PassFailure{Pass: "CallResolver", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "CallResolver")
}

func TestScopeImbalanceMessage(t *testing.T) {
	err := &cpgerr.ScopeImbalance{Expected: "Function", Got: "Block"}
	assert.Equal(t, `scope imbalance: expected to leave "Function", got "Block"`, err.Error())
}

func TestTypeMismatchMessage(t *testing.T) {
	err := &cpgerr.TypeMismatch{Want: "RecordDeclaration", Got: "FunctionDeclaration"}
	assert.Equal(t, "type mismatch: want RecordDeclaration, got FunctionDeclaration", err.Error())
}
