package service

import (
	"strings"

	"earnly/internal/domain"

	"github.com/jacoelho/banking/iban"
	"github.com/nyaruka/phonenumbers"
)

const payoutRegion = "PK"

// NormalizeDestination canonicalizes a payout destination for method:
// mobile wallets take a Pakistani mobile number and yield 923XXXXXXXXX, banks
// take a Pakistani IBAN and yield it uppercase without separators.
func NormalizeDestination(method, dest string) (string, error) {
	switch method {
	case domain.MethodEasyPaisa, domain.MethodJazzCash:
		if msisdn := normalizeMobile(dest); msisdn != "" {
			return msisdn, nil
		}
		return "", domain.Validationf("destination must be a Pakistani mobile number")
	case domain.MethodBank:
		if account := normalizeIBAN(dest); account != "" {
			return account, nil
		}
		return "", domain.Validationf("destination must be a valid Pakistani IBAN")
	}
	return "", domain.Validationf("unknown method %q", method)
}

func normalizeMobile(s string) string {
	num, err := phonenumbers.Parse(strings.TrimSpace(s), payoutRegion)
	if err != nil || !phonenumbers.IsValidNumberForRegion(num, payoutRegion) {
		return ""
	}
	if phonenumbers.GetNumberType(num) != phonenumbers.MOBILE {
		return ""
	}
	return strings.TrimPrefix(phonenumbers.Format(num, phonenumbers.E164), "+")
}

func normalizeIBAN(s string) string {
	s = strings.ToUpper(strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s)))
	if !strings.HasPrefix(s, payoutRegion) || iban.Validate(s) != nil {
		return ""
	}
	return s
}
