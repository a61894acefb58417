// Package stats tracks per-category event counters for the lifetime of the
// process. Counters reset on restart; there is no persistence.
package stats

import "sync/atomic"

// Stats is the process-wide event counter record. Construct one instance at
// startup and inject it; counters are safe for concurrent handlers.
type Stats struct {
	whaleTransfers      atomic.Int64
	contractDeployments atomic.Int64
	nftMints            atomic.Int64
	tokenLaunches       atomic.Int64
	largeSwaps          atomic.Int64
	subscriptions       atomic.Int64
	alertsTriggered     atomic.Int64
	feesCollected       atomic.Int64
	badgesEarned        atomic.Int64
}

func New() *Stats {
	return &Stats{}
}

// Snapshot is a point-in-time copy of the counters in stats endpoint shape.
type Snapshot struct {
	WhaleTransfers      int64 `json:"whaleTransfers"`
	ContractDeployments int64 `json:"contractDeployments"`
	NFTMints            int64 `json:"nftMints"`
	TokenLaunches       int64 `json:"tokenLaunches"`
	LargeSwaps          int64 `json:"largeSwaps"`
	Subscriptions       int64 `json:"subscriptions"`
	AlertsTriggered     int64 `json:"alertsTriggered"`
	FeesCollected       int64 `json:"feesCollected"`
	BadgesEarned        int64 `json:"badgesEarned"`
}

func (s *Stats) IncWhaleTransfers()      { s.whaleTransfers.Add(1) }
func (s *Stats) IncContractDeployments() { s.contractDeployments.Add(1) }
func (s *Stats) IncNFTMints()            { s.nftMints.Add(1) }
func (s *Stats) IncTokenLaunches()       { s.tokenLaunches.Add(1) }
func (s *Stats) IncLargeSwaps()          { s.largeSwaps.Add(1) }
func (s *Stats) IncSubscriptions()       { s.subscriptions.Add(1) }
func (s *Stats) IncAlertsTriggered()     { s.alertsTriggered.Add(1) }
func (s *Stats) IncFeesCollected()       { s.feesCollected.Add(1) }
func (s *Stats) IncBadgesEarned()        { s.badgesEarned.Add(1) }

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		WhaleTransfers:      s.whaleTransfers.Load(),
		ContractDeployments: s.contractDeployments.Load(),
		NFTMints:            s.nftMints.Load(),
		TokenLaunches:       s.tokenLaunches.Load(),
		LargeSwaps:          s.largeSwaps.Load(),
		Subscriptions:       s.subscriptions.Load(),
		AlertsTriggered:     s.alertsTriggered.Load(),
		FeesCollected:       s.feesCollected.Load(),
		BadgesEarned:        s.badgesEarned.Load(),
	}
}
