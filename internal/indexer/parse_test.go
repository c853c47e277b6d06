package indexer

import (
	"reflect"
	"testing"

	"yieldScope/internal/model"
)

func TestParseChains(t *testing.T) {
	got, err := ParseChains([]string{"Ethereum", " bsc ", "BNB", "", "arbitrum_one"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []model.Chain{model.ChainEthereum, model.ChainBNB, model.ChainArbitrum}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("chains mismatch: %v != %v", got, want)
	}
}

func TestParseChainsDefaultsToAll(t *testing.T) {
	got, err := ParseChains(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, model.Chains) {
		t.Fatalf("expected all chains, got %v", got)
	}

	got[0] = "mutated"
	if model.Chains[0] != model.ChainEthereum {
		t.Fatalf("ParseChains returned the shared slice")
	}
}

func TestParseChainsRejectsUnknown(t *testing.T) {
	if _, err := ParseChains([]string{"ethereum", "dogechain"}); err == nil {
		t.Fatalf("expected error for unknown chain")
	}
}
