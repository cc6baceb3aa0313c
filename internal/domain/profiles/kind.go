package profiles

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind string

const (
	KindPolitician  Kind = "politician"
	KindLegislation Kind = "legislation"
)

// ParseKind accepts the long names plus the short table prefixes used by clients.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "politician", "politicians", "ppl":
		return KindPolitician, nil
	case "legislation", "legi", "bill":
		return KindLegislation, nil
	default:
		return "", fmt.Errorf("unknown profile kind %q", raw)
	}
}

func KindFromIsPPL(isPPL bool) Kind {
	if isPPL {
		return KindPolitician
	}
	return KindLegislation
}

func (k Kind) IsPolitician() bool { return k == KindPolitician }

// LockedPage is the one page that stays visible while a profile is locked.
func (k Kind) LockedPage() string {
	if k == KindPolitician {
		return "synopsis"
	}
	return "overview"
}

// QuotaKey is the per-user quota identifier, e.g. "42ppl" or "7legi".
func QuotaKey(id int64, k Kind) string {
	if k == KindPolitician {
		return strconv.FormatInt(id, 10) + "ppl"
	}
	return strconv.FormatInt(id, 10) + "legi"
}

// MutexKey serializes remote work per profile, e.g. "p:42" or "l:7".
func MutexKey(id int64, k Kind) string {
	if k == KindPolitician {
		return "p:" + strconv.FormatInt(id, 10)
	}
	return "l:" + strconv.FormatInt(id, 10)
}

// ParseID validates a navigation id parameter. Only positive integers are profile ids.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid profile id %q: %w", raw, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid profile id %q", raw)
	}
	return id, nil
}
