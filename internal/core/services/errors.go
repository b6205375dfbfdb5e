package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
)

// corpusError marks a store failure as domain.ErrCorpusUnavailable.
func corpusError(op string, err error) error {
	if errors.Is(err, domain.ErrCorpusUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrCorpusUnavailable, op, err)
}

// percent rounds a similarity in [0,1] to a whole percentage.
func percent(sim float64) int {
	return int(math.Round(sim * 100))
}
