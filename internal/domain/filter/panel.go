// Package filter holds the region and organisation selection shared by the
// dashboard sections.
package filter

import (
	"fmt"
	"sort"

	"github.com/okian/paybench/pkg/metrics"
)

// State of a panel.
type State int

// Panel states.
const (
	Empty State = iota
	HasSelections
)

func (s State) String() string {
	if s == HasSelections {
		return "has_selections"
	}
	return "empty"
}

// Selection is an immutable copy of the selected values in insertion order.
type Selection struct {
	Regions []string `json:"regions"`
	OrgIDs  []string `json:"org_ids"`
}

// Panel owns the selection. Every selected value belongs to the universe the
// panel was built with. It is not safe for concurrent use.
type Panel struct {
	validRegions []string
	validOrgs    []string
	regionSet    map[string]struct{}
	orgSet       map[string]struct{}

	regions *orderedSet
	orgs    *orderedSet

	observers map[int]func(Selection)
	nextObs   int
}

// NewPanel builds an empty panel over the given universes. Their order is the
// order of AvailableRegions and AvailableOrgs.
func NewPanel(validRegions, validOrgIDs []string) *Panel {
	p := &Panel{
		validRegions: append([]string(nil), validRegions...),
		validOrgs:    append([]string(nil), validOrgIDs...),
		regionSet:    make(map[string]struct{}, len(validRegions)),
		orgSet:       make(map[string]struct{}, len(validOrgIDs)),
		regions:      newOrderedSet(),
		orgs:         newOrderedSet(),
		observers:    map[int]func(Selection){},
	}
	for _, r := range validRegions {
		p.regionSet[r] = struct{}{}
	}
	for _, id := range validOrgIDs {
		p.orgSet[id] = struct{}{}
	}
	return p
}

// AddRegion selects region. Adding a selected region is a no-op.
func (p *Panel) AddRegion(region string) error {
	if _, ok := p.regionSet[region]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	if !p.regions.add(region) {
		p.changed("add_region")
	}
	return nil
}

// RemoveRegion deselects region. Removing an unselected region is a no-op.
func (p *Panel) RemoveRegion(region string) error {
	if _, ok := p.regionSet[region]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, region)
	}
	if p.regions.remove(region) {
		p.changed("remove_region")
	}
	return nil
}

// AddOrg selects an organisation id. Adding a selected id is a no-op.
func (p *Panel) AddOrg(id string) error {
	if _, ok := p.orgSet[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOrg, id)
	}
	if !p.orgs.add(id) {
		p.changed("add_org")
	}
	return nil
}

// RemoveOrg deselects an organisation id. Removing an unselected id is a no-op.
func (p *Panel) RemoveOrg(id string) error {
	if _, ok := p.orgSet[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOrg, id)
	}
	if p.orgs.remove(id) {
		p.changed("remove_org")
	}
	return nil
}

// Reset clears both selections.
func (p *Panel) Reset() {
	if p.State() == Empty {
		return
	}
	p.regions.clear()
	p.orgs.clear()
	p.changed("reset")
}

// State reports whether anything is selected.
func (p *Panel) State() State {
	if p.regions.len() == 0 && p.orgs.len() == 0 {
		return Empty
	}
	return HasSelections
}

// Snapshot returns copies of the current selections.
func (p *Panel) Snapshot() Selection {
	return Selection{Regions: p.regions.values(), OrgIDs: p.orgs.values()}
}

// AvailableRegions is the region universe minus the selection.
func (p *Panel) AvailableRegions() []string {
	return without(p.validRegions, p.regions)
}

// AvailableOrgs is the organisation universe minus the selection.
func (p *Panel) AvailableOrgs() []string {
	return without(p.validOrgs, p.orgs)
}

// Matches reports whether a record passes the selection. A dimension with
// nothing selected matches everything.
func (p *Panel) Matches(region, orgID string) bool {
	if p.regions.len() > 0 && !p.regions.has(region) {
		return false
	}
	if p.orgs.len() > 0 && !p.orgs.has(orgID) {
		return false
	}
	return true
}

// Subscribe registers fn to receive a Selection after every effective
// change. The returned func removes the subscription.
func (p *Panel) Subscribe(fn func(Selection)) func() {
	id := p.nextObs
	p.nextObs++
	p.observers[id] = fn
	return func() { delete(p.observers, id) }
}

func (p *Panel) changed(op string) {
	metrics.RecordFilterChange(op)
	if len(p.observers) == 0 {
		return
	}
	ids := make([]int, 0, len(p.observers))
	for id := range p.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := p.observers[id]; ok {
			fn(p.Snapshot())
		}
	}
}

func without(universe []string, selected *orderedSet) []string {
	out := make([]string, 0, len(universe))
	for _, v := range universe {
		if !selected.has(v) {
			out = append(out, v)
		}
	}
	return out
}
