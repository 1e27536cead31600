package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckHostTempSpaceSucceedsOnRealTempDir(t *testing.T) {
	err := CheckHostTempSpace(t.TempDir())
	assert.NoError(t, err)
}

func TestCheckHostTempSpaceFailsOnMissingDir(t *testing.T) {
	err := CheckHostTempSpace("/nonexistent/path/for/v2vconvert/tests")
	assert.Error(t, err)

	var pipelineErr *PipelineError
	assert.True(t, errors.As(err, &pipelineErr))
	assert.True(t, errors.Is(pipelineErr, CategoryPreflight))
}
