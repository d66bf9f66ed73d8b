package market

import "math/big"

// BuySplit breaks a buy down into the base price and the additive fee
// surcharges. The buyer pays Total; only Base reaches the redemption vault.
type BuySplit struct {
	Base        *big.Int
	ProtocolFee *big.Int
	SubjectFee  *big.Int
	ReferralFee *big.Int
}

// Total returns the full amount the buyer must fund.
func (s *BuySplit) Total() *big.Int {
	total := new(big.Int).Set(s.Base)
	total.Add(total, s.ProtocolFee)
	total.Add(total, s.SubjectFee)
	total.Add(total, s.ReferralFee)
	return total
}

// SellSplit breaks a sell down into the fees deducted from the gross price and
// the net amount owed to the seller.
type SellSplit struct {
	ProtocolFee *big.Int
	SubjectFee  *big.Int
	Net         *big.Int
}

func feeShare(price *big.Int, bps uint32) *big.Int {
	if bps == 0 {
		return big.NewInt(0)
	}
	share := new(big.Int).Mul(price, big.NewInt(int64(bps)))
	return share.Div(share, bigBps)
}

func validBps(values ...uint32) bool {
	for _, v := range values {
		if v > BpsDenominator {
			return false
		}
	}
	return true
}

// SplitBuy computes the fee surcharges applied on top of a buy. The base price
// is passed through untouched; the referral share is charged only when a
// referrer is attached.
func SplitBuy(price *big.Int, protocolBps, subjectBps, referralBps uint32, hasReferrer bool) (*BuySplit, error) {
	if price == nil || price.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if !validBps(protocolBps, subjectBps, referralBps) {
		return nil, ErrInvalidFeeValue
	}
	split := &BuySplit{
		Base:        new(big.Int).Set(price),
		ProtocolFee: feeShare(price, protocolBps),
		SubjectFee:  feeShare(price, subjectBps),
		ReferralFee: big.NewInt(0),
	}
	if hasReferrer {
		split.ReferralFee = feeShare(price, referralBps)
	}
	return split, nil
}

// SplitSell computes the fees deducted from a sell's gross proceeds. The net
// owed to the seller must stay positive.
func SplitSell(price *big.Int, protocolBps, subjectBps uint32) (*SellSplit, error) {
	if price == nil || price.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if !validBps(protocolBps, subjectBps) {
		return nil, ErrInvalidFeeValue
	}
	split := &SellSplit{
		ProtocolFee: feeShare(price, protocolBps),
		SubjectFee:  feeShare(price, subjectBps),
	}
	net := new(big.Int).Set(price)
	net.Sub(net, split.ProtocolFee)
	net.Sub(net, split.SubjectFee)
	if net.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	split.Net = net
	return split, nil
}
