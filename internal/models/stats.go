// internal/models/stats.go
package models

type TendererStats struct {
	ActiveTenders          int   `json:"activeTenders"`
	BidsReceived           int   `json:"bidsReceived"`
	AvgBidValue            int64 `json:"avgBidValue"`
	ContractorsShortlisted int   `json:"contractorsShortlisted"`
}

type ContractorStats struct {
	ActiveBids  int   `json:"activeBids"`
	WinRate     int   `json:"winRate"`
	AvgBidValue int64 `json:"avgBidValue"`
	// JobsWonThisMonth counts every awarded bid; no calendar filter is applied.
	JobsWonThisMonth int `json:"jobsWonThisMonth"`
}
