package types

// ContractStatus is the processing state of an uploaded contract. A freshly
// created contract document carries no status field; absence decodes as
// ContractProcessing.
type ContractStatus string

const (
	ContractProcessing  ContractStatus = "processing"
	ContractReportReady ContractStatus = "report_ready"
	ContractError       ContractStatus = "error"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractProcessing, ContractReportReady, ContractError:
		return true
	}
	return false
}

// Contract is the document stored at users/{userId}/contracts/{id}.
// GCSPath points at the uploaded source object and is written by the upload
// path before this pipeline ever sees the document.
type Contract struct {
	ID      string         `firestore:"-" json:"id"`
	UserID  string         `firestore:"-" json:"userId"`
	Status  ContractStatus `firestore:"status,omitempty" json:"status,omitempty"`
	Error   string         `firestore:"error,omitempty" json:"error,omitempty"`
	GCSPath string         `firestore:"gcsPath,omitempty" json:"gcsPath,omitempty"`
}
