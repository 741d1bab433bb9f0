// internal/config/validate_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// helper to build a valid config quickly
func gateway(motes ...MoteConfig) *Config {
	return &Config{
		Gateway: GatewayConfig{
			Modem:       ModemConfig{Port: "/dev/ttyUSB0", Address: 1},
			Definitions: "./devices",
			Motes:       motes,
		},
	}
}

func mote(id string, addr uint16, slot *uint16) MoteConfig {
	return MoteConfig{
		ID:          id,
		ProductCode: "0000000100000002",
		Address:     addr,
		StatusSlot:  slot,
	}
}

func u16(v uint16) *uint16 { return &v }

// ---- tests ----

func TestValidate_OK(t *testing.T) {
	cfg := gateway(mote("m1", 5, nil), mote("m2", 6, nil))

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name string
		cfg  *Config
		want string
	}{
		{"nil", nil, "nil config"},
		{"no port", func() *Config { c := gateway(); c.Gateway.Modem.Port = ""; return c }(), "port required"},
		{"no definitions", func() *Config { c := gateway(); c.Gateway.Definitions = ""; return c }(), "definitions"},
		{"negative retries", func() *Config { c := gateway(); r := -1; c.Gateway.Modem.Retries = &r; return c }(), "retries"},
		{"wide gateway address", func() *Config { c := gateway(); c.Gateway.Modem.Address = 300; return c }(), "extended_addr"},
		{"empty id", gateway(mote("", 5, nil)), "id required"},
		{"non ascii id", gateway(mote("mötë", 5, nil)), "ASCII"},
		{"duplicate id", gateway(mote("m1", 5, nil), mote("m1", 6, nil)), "duplicate id"},
		{"short pcode", gateway(MoteConfig{ID: "m1", ProductCode: "0001", Address: 5}), "16 hex"},
		{"bad pcode", gateway(MoteConfig{ID: "m1", ProductCode: "000000010000000Z", Address: 5}), "product_code"},
		{"wide mote address", gateway(mote("m1", 0x1FF, nil)), "extended_addr"},
		{"address collision", gateway(mote("m1", 5, nil), mote("m2", 5, nil)), "address collision"},
		{"slot collision", func() *Config {
			c := gateway(mote("m1", 5, u16(2)), mote("m2", 6, u16(2)))
			c.Gateway.StatusMemory.Endpoint = "127.0.0.1:502"
			return c
		}(), "status_slot collision"},
		{"slot out of range", func() *Config {
			c := gateway(mote("m1", 5, u16(5000)))
			c.Gateway.StatusMemory.Endpoint = "127.0.0.1:502"
			return c
		}(), "out of register range"},
		{"status without endpoint", gateway(mote("m1", 5, u16(0))), "endpoint required"},
		{"zero tx interval", func() *Config {
			m := mote("m1", 5, nil)
			m.SetTxInterval = u16(0)
			return gateway(m)
		}(), "set_tx_interval"},
		{"wide set_address", func() *Config {
			m := mote("m1", 5, nil)
			m.SetAddress = u16(300)
			return gateway(m)
		}(), "needs extended_addr"},
		{"set_address onto other mote", func() *Config {
			m := mote("m1", 5, nil)
			m.SetAddress = u16(6)
			return gateway(m, mote("m2", 6, nil))
		}(), "is the address of mote"},
		{"set_address collision", func() *Config {
			a, b := mote("m1", 5, nil), mote("m2", 6, nil)
			a.SetAddress, b.SetAddress = u16(9), u16(9)
			return gateway(a, b)
		}(), "set_address collision"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.cfg)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not contain %q", err, tc.want)
			}
		})
	}
}

func TestValidate_ExtendedAllowsWideAddresses(t *testing.T) {
	cfg := gateway(mote("m1", 0x1FF, nil))
	cfg.Gateway.Modem.ExtendedAddr = true
	cfg.Gateway.Modem.Address = 300

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_SetAddressToOwnAddress(t *testing.T) {
	m := mote("m1", 5, nil)
	m.SetAddress = u16(5)
	m.SetTxInterval = u16(60)

	if err := Validate(gateway(m)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := gateway(mote("a-very-long-mote-identifier", 5, nil))
	Normalize(cfg)

	g := cfg.Gateway
	if g.Modem.BaudRate != DefaultBaudRate {
		t.Fatalf("baud_rate: got=%d want=%d", g.Modem.BaudRate, DefaultBaudRate)
	}
	if g.Modem.AckTimeoutMs != DefaultAckTimeoutMs {
		t.Fatalf("ack_timeout_ms: got=%d", g.Modem.AckTimeoutMs)
	}
	if g.Modem.Retries == nil || *g.Modem.Retries != DefaultRetries {
		t.Fatalf("retries not defaulted")
	}
	if g.Poll.IntervalMs != DefaultPollMs {
		t.Fatalf("interval_ms: got=%d", g.Poll.IntervalMs)
	}
	if g.Motes[0].ID != "a-very-long-mote-identifier" {
		t.Fatalf("id must not change: %q", g.Motes[0].ID)
	}
}

func TestNormalize_LongIDsStayDistinct(t *testing.T) {
	cfg := gateway(mote("livingroom-sensor-a", 5, nil), mote("livingroom-sensor-b", 6, nil))
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Normalize(cfg)

	if cfg.Gateway.Motes[0].ID == cfg.Gateway.Motes[1].ID {
		t.Fatalf("ids collapsed to %q", cfg.Gateway.Motes[0].ID)
	}
}

func TestNormalize_KeepsExplicitZeroRetries(t *testing.T) {
	cfg := gateway()
	r := 0
	cfg.Gateway.Modem.Retries = &r
	Normalize(cfg)

	if *cfg.Gateway.Modem.Retries != 0 {
		t.Fatalf("explicit retries overwritten: %d", *cfg.Gateway.Modem.Retries)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	doc := `
gateway:
  modem:
    port: /dev/ttyUSB0
    address: 1
    retries: 0
  definitions: ./devices
  status_memory:
    endpoint: 127.0.0.1:502
    unit_id: 3
  motes:
    - id: livingroom
      product_code: "0000000100000002"
      address: 5
      status_slot: 4
      set_tx_interval: 60
      set_address: 9
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	g := cfg.Gateway
	if g.Modem.Retries == nil || *g.Modem.Retries != 0 {
		t.Fatalf("retries: got=%v", g.Modem.Retries)
	}
	if g.StatusMemory.UnitID != 3 {
		t.Fatalf("unit_id: got=%d", g.StatusMemory.UnitID)
	}
	if len(g.Motes) != 1 || g.Motes[0].StatusSlot == nil || *g.Motes[0].StatusSlot != 4 {
		t.Fatalf("motes decoded wrong: %+v", g.Motes)
	}
	if g.Motes[0].SetTxInterval == nil || *g.Motes[0].SetTxInterval != 60 ||
		g.Motes[0].SetAddress == nil || *g.Motes[0].SetAddress != 9 {
		t.Fatalf("pending changes decoded wrong: %+v", g.Motes[0])
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	if err := os.WriteFile(path, []byte("gateway:\n  bogus: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}
