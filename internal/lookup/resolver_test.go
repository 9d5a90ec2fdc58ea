package lookup_test

import (
	"context"
	"errors"
	"testing"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/lookup"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/services/snipeit"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/testsupport"
)

type registryStub struct {
	byTag    *snipeit.Hardware
	bySerial *snipeit.Hardware
	search   *snipeit.Hardware
	err      error
	calls    []string
}

func (s *registryStub) FindByTag(_ context.Context, tag string) (*snipeit.Hardware, error) {
	s.calls = append(s.calls, "bytag")
	return s.result(s.byTag)
}

func (s *registryStub) FindBySerial(_ context.Context, serial string) (*snipeit.Hardware, error) {
	s.calls = append(s.calls, "byserial")
	return s.result(s.bySerial)
}

func (s *registryStub) Search(_ context.Context, term string) (*snipeit.Hardware, error) {
	s.calls = append(s.calls, "search")
	return s.result(s.search)
}

func (s *registryStub) result(hw *snipeit.Hardware) (*snipeit.Hardware, error) {
	if s.err != nil {
		return nil, s.err
	}
	if hw == nil {
		return nil, snipeit.ErrNotFound
	}
	return hw, nil
}

func newResolver(t *testing.T, stub *registryStub) *lookup.Resolver {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	opts := []lookup.Option{}
	if stub != nil {
		opts = append(opts, lookup.WithClient(stub))
	}
	return lookup.NewResolver(cfg, nil, opts...)
}

func TestResolveUsesTagMatchFirst(t *testing.T) {
	stub := &registryStub{
		byTag: &snipeit.Hardware{
			AssetTag:     "CPH4021",
			Serial:       "5CD1234XYZ",
			Category:     snipeit.Named{Name: "Laptop"},
			Manufacturer: snipeit.Named{Name: "HP"},
			Model:        snipeit.Named{Name: "EliteBook 840"},
		},
	}
	rec, found := newResolver(t, stub).Resolve(context.Background(), "CPH4021")
	if !found {
		t.Fatal("expected registry hit")
	}
	if rec.EquipmentType != "Laptop" {
		t.Fatalf("unexpected equipment type: %q", rec.EquipmentType)
	}
	if rec.ItemDescription != "HP EliteBook 840" {
		t.Fatalf("unexpected description: %q", rec.ItemDescription)
	}
	if rec.SerialNumber != "5CD1234XYZ" || rec.TempleTag != "CPH4021" {
		t.Fatalf("unexpected identifiers: %+v", rec)
	}
	if len(stub.calls) != 1 || stub.calls[0] != "bytag" {
		t.Fatalf("expected lookup to stop at bytag, calls: %v", stub.calls)
	}
}

func TestResolveFallsThroughEndpointsInOrder(t *testing.T) {
	stub := &registryStub{search: &snipeit.Hardware{ID: 3, Serial: "S-3"}}
	_, found := newResolver(t, stub).Resolve(context.Background(), "S-3")
	if !found {
		t.Fatal("expected registry hit via search")
	}
	want := []string{"bytag", "byserial", "search"}
	if len(stub.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, stub.calls)
	}
	for i := range want {
		if stub.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, stub.calls)
		}
	}
}

func TestResolveMissingCategoryUsesFallback(t *testing.T) {
	stub := &registryStub{bySerial: &snipeit.Hardware{ID: 9, Serial: "S-9"}}
	rec, found := newResolver(t, stub).Resolve(context.Background(), "S-9")
	if !found {
		t.Fatal("expected registry hit")
	}
	if rec.EquipmentType != "Computer" {
		t.Fatalf("expected fallback category, got %q", rec.EquipmentType)
	}
}

func TestResolveCollapsesTransportErrorsToClassification(t *testing.T) {
	stub := &registryStub{err: errors.New("connection refused")}
	rec, found := newResolver(t, stub).Resolve(context.Background(), "CPH4021")
	if found {
		t.Fatal("transport errors must degrade to a not-found result")
	}
	if rec.TempleTag != "CPH4021" || rec.SerialNumber != "" {
		t.Fatalf("expected tag-like classification, got %+v", rec)
	}
}

func TestResolveWithoutClientClassifies(t *testing.T) {
	rec, found := newResolver(t, nil).Resolve(context.Background(), "9876543210987")
	if found {
		t.Fatal("expected classifier result without a client")
	}
	if rec.SerialNumber != "9876543210987" || rec.TempleTag != "" {
		t.Fatalf("expected serial classification, got %+v", rec)
	}
}
