package insurance

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	policyNumberAttempts = 10
	policyNumberMin      = 100000
	policyNumberSpan     = 900000
)

// policyNumber builds HAP-<first three letters of the category slug>-<six digits>.
func policyNumber(categorySlug string) (string, error) {
	prefix := strings.ToUpper(categorySlug)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}

	n, err := rand.Int(rand.Reader, big.NewInt(policyNumberSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("HAP-%s-%d", prefix, policyNumberMin+n.Int64()), nil
}

// generatePolicyNumber retries against existing numbers. The unique index on
// policy_number still guards concurrent purchases.
func generatePolicyNumber(ctx context.Context, repo Repository, categorySlug string) (string, error) {
	for i := 0; i < policyNumberAttempts; i++ {
		number, err := policyNumber(categorySlug)
		if err != nil {
			return "", err
		}
		exists, err := repo.PolicyNumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", ErrPolicyNumberExhausted
}
