package types

import "regexp"

// ContractPath identifies a contract document inside a user's subtree.
type ContractPath struct {
	UserID     string
	ContractID string
}

// Matches both the bare "users/{u}/contracts/{c}" shape and the full
// "projects/{p}/databases/{d}/documents/users/{u}/contracts/{c}" resource
// name delivered by store change events.
var contractPathRe = regexp.MustCompile(`users/([^/]+)/contracts/([^/]+)`)

// ParseContractPath extracts the user and contract ids from an event
// resource name. It never panics; malformed input yields ok=false so the
// caller can log and drop the event instead of retrying it forever.
func ParseContractPath(resource string) (ContractPath, bool) {
	m := contractPathRe.FindStringSubmatch(resource)
	if m == nil {
		return ContractPath{}, false
	}
	return ContractPath{UserID: m[1], ContractID: m[2]}, true
}
