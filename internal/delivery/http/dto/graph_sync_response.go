package dto

type SyncStatusResponse struct {
	SyncedCourses   int `json:"synced_courses"`
	UnsyncedCourses int `json:"unsynced_courses"`
}

type SyncReportResponse struct {
	Total  int `json:"total"`
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}
