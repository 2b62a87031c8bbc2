package types

// OrderKind tags an OrderRequest with the venue action it describes.
type OrderKind string

const (
	OrderKindMarket OrderKind = "market"
	OrderKindLimit  OrderKind = "limit"
	OrderKindModify OrderKind = "modify"
	OrderKindCancel OrderKind = "cancel"
)

// OrderRequest describes one intended venue action. Market and limit requests
// carry symbol/side/volume; modify and cancel reference an existing pending
// order by Ticket. Never persisted.
type OrderRequest struct {
	Kind      OrderKind
	Symbol    string
	Side      Side
	Volume    float64
	Price     float64 // limit and modify only
	Deviation int     // market only, price tolerance in points
	Ticket    int64   // modify and cancel only
	Magic     int64
	Comment   string
	ClientID  string
}

// Venue return codes, mirroring the MT5 trade server retcodes the bridge
// passes through.
const (
	RetcodeDone      = 10009
	RetcodePartial   = 10010
	RetcodeRequote   = 10004
	RetcodeRejected  = 10006
	RetcodeInvalid   = 10013
	RetcodeNoChanges = 10025
)

// OrderResult is the venue's verdict on a submitted request. Failure and
// partial-fill detail is carried as data; callers inspect Retcode rather than
// receiving an error.
type OrderResult struct {
	Retcode int
	Deal    int64
	Order   int64
	Price   float64
	Volume  float64
	Bid     float64
	Ask     float64
	Comment string
}

// OK reports whether the venue accepted the request in full.
func (r OrderResult) OK() bool { return r.Retcode == RetcodeDone }
