package scorebid

import "context"

type Input struct {
	BidID string `json:"bidId"`
}

type Output struct {
	BidID      string `json:"bidId"`
	MatchScore int    `json:"matchScore"`
	Scored     bool   `json:"scored"`
}

type Scorer interface {
	ScoreBid(ctx context.Context, bidID string) (score int, found bool, err error)
}

type BidScoreWriter interface {
	UpdateBidMatchScore(ctx context.Context, bidID string, score int) error
}
