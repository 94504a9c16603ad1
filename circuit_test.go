package netlist

import "testing"

func twoNetCircuit(t *testing.T) (*Circuit, *Net, *Net) {
	t.Helper()
	c := NewCircuit("INV")
	n1 := NewNet("IN")
	n2 := NewNet("OUT")
	if err := c.AddNet(n1); err != nil {
		t.Fatal(err)
	}
	if err := c.AddNet(n2); err != nil {
		t.Fatal(err)
	}
	return c, n1, n2
}

func TestAddNetOwnership(t *testing.T) {
	c, n1, _ := twoNetCircuit(t)
	if err := c.AddNet(n1); err == nil {
		t.Fatal("expected AlreadyOwned error re-adding an owned net")
	}
	other := NewCircuit("OTHER")
	if err := other.AddNet(n1); err == nil {
		t.Fatal("expected AlreadyOwned error adding a net owned elsewhere")
	}
}

func TestJoinNetsMergesRefs(t *testing.T) {
	c, n1, n2 := twoNetCircuit(t)
	dc := NewDeviceClass("R")
	dc.AddTerminal("A", "")
	dc.AddTerminal("B", "")
	d := NewDevice(dc, "R1")
	if err := c.AddDevice(d); err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectTerminal(d, 0, n1); err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectTerminal(d, 1, n2); err != nil {
		t.Fatal(err)
	}
	if err := c.JoinNets(n1, n2); err != nil {
		t.Fatal(err)
	}
	if len(n1.TerminalRefs()) != 2 {
		t.Fatalf("expected 2 terminal refs on keep net, got %d", len(n1.TerminalRefs()))
	}
	if n2.Circuit() != nil {
		t.Fatal("dropped net should be detached from circuit")
	}
}

func TestRemovePinLeavesGap(t *testing.T) {
	c := NewCircuit("C")
	p0 := c.AddPin("a")
	p1 := c.AddPin("b")
	p2 := c.AddPin("c")
	if err := c.RemovePin(p1.ID()); err != nil {
		t.Fatal(err)
	}
	if c.PinCount() != 3 {
		t.Fatalf("pin count should remain 3 after RemovePin, got %d", c.PinCount())
	}
	if c.Pin(p1.ID()) != nil {
		t.Fatal("removed pin slot should be nil")
	}
	if c.Pin(p0.ID()) == nil || c.Pin(p2.ID()) == nil {
		t.Fatal("surviving pin slots should remain valid")
	}
}

func TestJoinPinsClosesGap(t *testing.T) {
	c := NewCircuit("C")
	p0 := c.AddPin("a")
	p1 := c.AddPin("b")
	n := NewNet("N")
	if err := c.AddNet(n); err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectPin(p0.ID(), n); err != nil {
		t.Fatal(err)
	}
	if err := c.JoinPins(p0.ID(), p1.ID()); err != nil {
		t.Fatal(err)
	}
	if c.PinCount() != 1 {
		t.Fatalf("expected pin count 1 after JoinPins, got %d", c.PinCount())
	}
}

func TestPurgeNetsRemovesPassiveOnly(t *testing.T) {
	c, n1, n2 := twoNetCircuit(t)
	dc := NewDeviceClass("R")
	dc.AddTerminal("A", "")
	dc.AddTerminal("B", "")
	d := NewDevice(dc, "")
	if err := c.AddDevice(d); err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectTerminal(d, 0, n1); err != nil {
		t.Fatal(err)
	}
	c.PurgeNets()
	if n1.Circuit() == nil {
		t.Fatal("net with a terminal ref should survive PurgeNets")
	}
	if n2.Circuit() != nil {
		t.Fatal("floating net should be removed by PurgeNets")
	}
}

func TestCombineDevicesParallel(t *testing.T) {
	c, n1, n2 := twoNetCircuit(t)
	dc := NewDeviceClass("R")
	dc.AddTerminal("A", "")
	dc.AddTerminal("B", "")
	dc.SetSupportsParallelCombine(true)
	dc.SetCombineDelegate(func(a, b *Device) bool {
		for i := 0; i < b.NTerminals(); i++ {
			c.ConnectTerminal(b, TerminalID(i), nil) //nolint:errcheck — b always owned by c
		}
		return true
	})
	d1 := NewDevice(dc, "R1")
	d2 := NewDevice(dc, "R2")
	if err := c.AddDevice(d1); err != nil {
		t.Fatal(err)
	}
	if err := c.AddDevice(d2); err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectTerminal(d1, 0, n1); err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectTerminal(d1, 1, n2); err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectTerminal(d2, 0, n1); err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectTerminal(d2, 1, n2); err != nil {
		t.Fatal(err)
	}
	c.CombineDevices()
	if len(c.Devices()) != 1 {
		t.Fatalf("expected 1 device after combining parallel pair, got %d", len(c.Devices()))
	}
}
