// Package action names the closed set of things an approved record can do.
package action

import "strings"

// Kind identifies the capability that executes an approved record.
type Kind string

const (
	KindMessageSend Kind = "message-send"
	KindSocialPost  Kind = "social-post"
	KindPayment     Kind = "payment"
	KindGeneric     Kind = "generic"
)

// Kinds lists every action kind.
func Kinds() []Kind {
	return []Kind{KindMessageSend, KindSocialPost, KindPayment, KindGeneric}
}

func (k Kind) String() string { return string(k) }

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindMessageSend, KindSocialPost, KindPayment, KindGeneric:
		return true
	}
	return false
}

// aliases maps substrings of free-text record types to kinds, checked in
// order.
var aliases = []struct {
	kind  Kind
	terms []string
}{
	{KindMessageSend, []string{"email", "message", "mail"}},
	{KindSocialPost, []string{"linkedin", "social", "post"}},
	{KindPayment, []string{"payment", "invoice"}},
}

// ParseKind maps a declared record type or action string onto a Kind. Exact
// kind names are accepted as-is; anything unrecognized is KindGeneric.
func ParseKind(s string) Kind {
	lower := strings.ToLower(strings.TrimSpace(s))
	if k := Kind(lower); k.IsValid() {
		return k
	}
	for _, a := range aliases {
		for _, term := range a.terms {
			if strings.Contains(lower, term) {
				return a.kind
			}
		}
	}
	return KindGeneric
}
