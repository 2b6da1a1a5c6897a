package reconcile

import (
	"surveyhub/internal/model"
)

// CommonKeys are the respondent-level keys every feed shares. Source 2 uses
// them as a denylist when scanning an entry for question labels.
var CommonKeys = []string{
	"id",
	"contact_id",
	"status",
	"date_submitted",
	"session_id",
	"language",
	"date_started",
	"ip_address",
	"referer",
	"user_agent",
	"country",
}

// CommentsSuffix is appended to a Source 2 question label to find its comments
const CommentsSuffix = "_comments"

var commonKeySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(CommonKeys))
	for _, k := range CommonKeys {
		set[k] = struct{}{}
	}
	return set
}()

func isCommonKey(key string) bool {
	_, ok := commonKeySet[key]
	return ok
}

// ExtractCommon reads the respondent identity and common fields from any feed's entry.
// Missing keys become null; the identity is "" when absent.
func ExtractCommon(entry map[string]any) (string, model.CommonFields) {
	id := ""
	if s := stringValue(entry["id"]); s != nil {
		id = *s
	}

	return id, model.CommonFields{
		ContactID:     stringValue(entry["contact_id"]),
		Status:        stringValue(entry["status"]),
		DateSubmitted: stringValue(entry["date_submitted"]),
		SessionID:     stringValue(entry["session_id"]),
		Language:      stringValue(entry["language"]),
		DateStarted:   stringValue(entry["date_started"]),
		IPAddress:     stringValue(entry["ip_address"]),
		Referer:       stringValue(entry["referer"]),
		UserAgent:     stringValue(entry["user_agent"]),
		Country:       stringValue(entry["country"]),
	}
}
