// Package txid encodes the composite transaction identifier that correlates a
// purchase across initiation, gateway callback and manual verification.
//
// A token is gateway_userRef_planRef_timestamp. Plan references may themselves
// contain the delimiter ("coins_500"), so decoding is asymmetric: first part is
// the gateway, second the user reference, last the epoch timestamp, and
// everything in between is rejoined into the plan reference. Gateway names and
// user references are guaranteed delimiter-free by their producers.
package txid

import (
	"errors"
	"strconv"
	"strings"
)

const Delimiter = "_"

var ErrMalformed = errors.New("malformed transaction id")

type Ref struct {
	Gateway   string
	UserRef   string
	PlanRef   string
	Timestamp int64
}

func Encode(gateway, userRef, planRef string, timestamp int64) string {
	return strings.Join([]string{gateway, userRef, planRef, strconv.FormatInt(timestamp, 10)}, Delimiter)
}

func Decode(token string) (Ref, error) {
	parts := strings.Split(token, Delimiter)
	if len(parts) < 4 {
		return Ref{}, ErrMalformed
	}
	ts, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return Ref{}, ErrMalformed
	}
	return Ref{
		Gateway:   parts[0],
		UserRef:   parts[1],
		PlanRef:   strings.Join(parts[2:len(parts)-1], Delimiter),
		Timestamp: ts,
	}, nil
}
