package model

import (
	"fmt"
	"strings"
)

type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
	ChainBase     Chain = "base"
	ChainArbitrum Chain = "arbitrum"
	ChainBSC      Chain = "bsc"
	ChainKlaytn   Chain = "klaytn"
	ChainSolana   Chain = "solana"
)

func (c Chain) String() string {
	return string(c)
}

// Family returns the address family a wallet must belong to for this chain.
func (c Chain) Family() ChainFamily {
	switch c {
	case ChainSolana:
		return FamilySolana
	case ChainEthereum, ChainPolygon, ChainBase, ChainArbitrum, ChainBSC, ChainKlaytn:
		return FamilyEVM
	default:
		return ""
	}
}

// Symbol is the short ticker-style label used in normalized provider output.
func (c Chain) Symbol() string {
	switch c {
	case ChainEthereum:
		return "ETH"
	case ChainPolygon:
		return "MATIC"
	case ChainBase:
		return "BASE"
	case ChainArbitrum:
		return "ARB"
	case ChainBSC:
		return "BNB"
	case ChainKlaytn:
		return "KLAY"
	case ChainSolana:
		return "SOL"
	default:
		return strings.ToUpper(string(c))
	}
}

// ParseChain accepts either the chain name or its symbol, case-insensitively.
func ParseChain(raw string) (Chain, error) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	for _, c := range AllChains {
		if norm == string(c) || norm == strings.ToLower(c.Symbol()) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown chain %q", raw)
}

// AllChains lists every chain in the default iteration order.
var AllChains = []Chain{
	ChainEthereum,
	ChainPolygon,
	ChainBase,
	ChainArbitrum,
	ChainBSC,
	ChainKlaytn,
	ChainSolana,
}

type ChainFamily string

const (
	FamilyEVM    ChainFamily = "EVM"
	FamilySolana ChainFamily = "SOLANA"
)

func (f ChainFamily) String() string {
	return string(f)
}

// Provider identifies an external indexing source.
type Provider string

const (
	ProviderMoralis  Provider = "moralis"
	ProviderDAS      Provider = "das"
	ProviderKAS      Provider = "kas"
	ProviderGrouping Provider = "grouping"
)

func (p Provider) String() string {
	return string(p)
}
