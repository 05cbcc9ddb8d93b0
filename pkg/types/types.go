package types

// TenantId identifies the tenant a row belongs to. Every query in the data
// layer is tenant scoped.
type TenantId string

// UserId identifies a principal. The empty UserId is the anonymous,
// unauthenticated principal.
type UserId string

// AnonymousUser is the identity of an unauthenticated request.
const AnonymousUser UserId = ""

func (u UserId) IsAnonymous() bool {
	return u == AnonymousUser
}

// ResourceKind names the class of a sharable resource. Slug uniqueness is
// scoped per owner and kind, so two kinds may carry the same slug for one
// owner.
type ResourceKind string

const (
	ResourceKindBoard         ResourceKind = "board"
	ResourceKindDocument      ResourceKind = "document"
	ResourceKindVisualization ResourceKind = "visualization"
	ResourceKindInvalid       ResourceKind = ""
)

const (
	BoardKind         = "Board"
	DocumentKind      = "Document"
	VisualizationKind = "Visualization"
)

// Abbrev returns the single character kind abbreviation used in owner path
// references: u/<owner>/<abbrev>/<slug>.
func (k ResourceKind) Abbrev() string {
	switch k {
	case ResourceKindBoard:
		return "b"
	case ResourceKindDocument:
		return "d"
	case ResourceKindVisualization:
		return "v"
	}
	return ""
}

func (k ResourceKind) IsValid() bool {
	switch k {
	case ResourceKindBoard, ResourceKindDocument, ResourceKindVisualization:
		return true
	}
	return false
}

func Kind(k ResourceKind) string {
	switch k {
	case ResourceKindBoard:
		return BoardKind
	case ResourceKindDocument:
		return DocumentKind
	case ResourceKindVisualization:
		return VisualizationKind
	}
	return ""
}
