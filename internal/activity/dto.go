package activity

type ListFilter struct {
	UserID *int64
	Action string
	Limit  int
	Offset int
}

type ListResponse struct {
	Entries []*Entry `json:"entries"`
	Total   int64    `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}
