package azdo

// Azure DevOps Git REST API types. Only the fields this adapter sends or
// reads are modeled.
// See: https://learn.microsoft.com/en-us/rest/api/azure/devops/git

// apiVersion is pinned; thread and item payload shapes are stable across it.
const apiVersion = "7.0"

// Thread statuses accepted by the pull request threads API.
const (
	threadStatusActive = "active"
	commentTypeText    = "text"
)

// Item is the response from GET .../items for a single file.
type Item struct {
	ObjectID string `json:"objectId"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	IsFolder bool   `json:"isFolder"`
}

// IdentityRef identifies a comment author.
type IdentityRef struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
}

// Comment is a single comment inside a thread.
type Comment struct {
	ID            int         `json:"id"`
	Content       string      `json:"content"`
	CommentType   string      `json:"commentType"`
	Author        IdentityRef `json:"author"`
	PublishedDate string      `json:"publishedDate"`
	IsDeleted     bool        `json:"isDeleted"`
}

// Position is a 1-based line/offset position in a file.
type Position struct {
	Line   int `json:"line"`
	Offset int `json:"offset"`
}

// ThreadContext anchors a thread to a file and line range. The right side
// is the new version of the file, the left side the old one.
type ThreadContext struct {
	FilePath       string    `json:"filePath"`
	RightFileStart *Position `json:"rightFileStart,omitempty"`
	RightFileEnd   *Position `json:"rightFileEnd,omitempty"`
	LeftFileStart  *Position `json:"leftFileStart,omitempty"`
	LeftFileEnd    *Position `json:"leftFileEnd,omitempty"`
}

// Thread is one comment thread on a pull request.
type Thread struct {
	ID            int            `json:"id"`
	Status        string         `json:"status"`
	IsDeleted     bool           `json:"isDeleted"`
	ThreadContext *ThreadContext `json:"threadContext"`
	Comments      []Comment      `json:"comments"`
	PublishedDate string         `json:"publishedDate"`
}

// ThreadList is the envelope for GET .../threads.
type ThreadList struct {
	Count int      `json:"count"`
	Value []Thread `json:"value"`
}

// CreateThreadRequest is the body for POST .../threads.
type CreateThreadRequest struct {
	Status        string         `json:"status"`
	ThreadContext *ThreadContext `json:"threadContext,omitempty"`
	Comments      []NewComment   `json:"comments"`
}

// NewComment is a comment inside a thread creation request.
type NewComment struct {
	ParentCommentID int    `json:"parentCommentId"`
	Content         string `json:"content"`
	CommentType     string `json:"commentType"`
}

// ErrorResponse is the error envelope the API returns on failures.
type ErrorResponse struct {
	Message string `json:"message"`
	TypeKey string `json:"typeKey"`
}
