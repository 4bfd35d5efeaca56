package repository

// IssueFilter narrows a listing. Empty strings match everything.
type IssueFilter struct {
	Q        string
	Status   string
	Priority string
	Category string
	Limit    int
	Offset   int
}
