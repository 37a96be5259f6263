package aggregate

import (
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/rocjay1/spend-sentinel/internal/ownership"
	"github.com/shopspring/decimal"
)

// TransferPair is a matched outbound and inbound internal leg.
type TransferPair struct {
	Outbound models.Transaction `json:"outbound"`
	Inbound  models.Transaction `json:"inbound"`
}

// TransferPairing is the result of PairInternalTransfers.
type TransferPairing struct {
	Pairs          []TransferPair       `json:"pairs"`
	OrphanOutbound []models.Transaction `json:"orphanOutbound"`
	OrphanInbound  []models.Transaction `json:"orphanInbound"`
}

// PairInternalTransfers greedily matches each outbound internal leg with the
// first unmatched inbound leg of equal absolute amount on the same date.
// Ties go to list order; this is not an optimal matching.
func PairInternalTransfers(txs []models.Transaction, own models.Ownership) TransferPairing {
	var outbound, inbound []models.Transaction
	for _, t := range txs {
		if !ownership.IsInternal(t, own) {
			continue
		}
		switch {
		case t.Amount.IsNegative():
			outbound = append(outbound, t)
		case t.Amount.IsPositive():
			inbound = append(inbound, t)
		}
	}

	result := TransferPairing{
		Pairs:          []TransferPair{},
		OrphanOutbound: []models.Transaction{},
	}
	matched := make([]bool, len(inbound))
	for _, out := range outbound {
		found := -1
		for i, in := range inbound {
			if matched[i] {
				continue
			}
			if in.Date == out.Date && in.Amount.Abs().Equal(out.Amount.Abs()) {
				found = i
				break
			}
		}
		if found < 0 {
			result.OrphanOutbound = append(result.OrphanOutbound, out)
			continue
		}
		matched[found] = true
		result.Pairs = append(result.Pairs, TransferPair{Outbound: out, Inbound: inbound[found]})
	}

	result.OrphanInbound = []models.Transaction{}
	for i, in := range inbound {
		if !matched[i] {
			result.OrphanInbound = append(result.OrphanInbound, in)
		}
	}
	return result
}

// Total is the money moved internally, counting a matched pair once and
// every orphan leg on its own.
func (p TransferPairing) Total() decimal.Decimal {
	total := decimal.Zero
	for _, pair := range p.Pairs {
		total = total.Add(pair.Outbound.Amount.Abs())
	}
	for _, t := range p.OrphanOutbound {
		total = total.Add(t.Amount.Abs())
	}
	for _, t := range p.OrphanInbound {
		total = total.Add(t.Amount.Abs())
	}
	return total
}

// InternalTransferTotal is PairInternalTransfers(txs, own).Total().
func InternalTransferTotal(txs []models.Transaction, own models.Ownership) decimal.Decimal {
	return PairInternalTransfers(txs, own).Total()
}
