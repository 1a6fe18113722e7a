package domain

import (
	"strconv"
	"strings"
)

// Location is a place every non-spy shares for one round.
type Location struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// Catalog is the ordered list of playable locations.
type Catalog []Location

// DefaultCatalog returns the built-in locations.
func DefaultCatalog() Catalog {
	return Catalog{
		{Name: "Hub", Roles: []string{"AFK Player", "Flux Seller", "Club Recruiter", "Newcomer", "Whale Player", "Market Browser", "Corner Camper"}},
		{Name: "Delves", Roles: []string{"Speed Runner", "Lost Player", "Gem Farmer", "Depth Diver", "Loot Hoarder", "Boss Hunter", "AFK Leacher"}},
		{Name: "Geode Topside", Roles: []string{"Ore Miner", "Cave Explorer", "Relic Hunter", "Food Gatherer", "Crystallogy Student", "Geode Mount Collector", "Lazy Tourist"}},
		{Name: "Shadow Tower", Roles: []string{"Tank", "DPS", "Healer", "Loot Roller", "Carry Service", "Shadow Key Seller", "Undergeared Player"}},
		{Name: "Club World", Roles: []string{"Builder", "Decorator", "Club Leader", "Visitor", "Permission Manager", "Gardener", "Trophy Collector"}},
		{Name: "Bomber Royale", Roles: []string{"Tryhard", "Casual Player", "Bomb Spammer", "Strategic Player", "Corner Camper", "Rage Quitter", "Spectator"}},
		{Name: "Cornerstone", Roles: []string{"Architect", "Storage Organizer", "Crafting Station User", "Gardener", "Trophy Displayer", "Decoration Hoarder", "Chest Opener"}},
		{Name: "Tutorial World", Roles: []string{"New Player", "Helping Veteran", "Speedrunner", "Quest Completer", "Lost Soul", "Skipping Everything", "Reading Carefully"}},
		{Name: "Trove of Wonder Ship", Roles: []string{"Shop Browser", "Deal Hunter", "Whale Buyer", "Daily Reward Claimer", "Credit Farmer", "Window Shopper", "Impulse Buyer"}},
		{Name: "Geode Caves", Roles: []string{"Ore Farmer", "Monster Fighter", "Relic Searcher", "Lost in Dark", "Torch Placer", "Bomber", "Resource Hoarder"}},
		{Name: "Treasure Isles", Roles: []string{"Ship Captain", "Treasure Hunter", "Ring Crafter", "Pirate Costume Wearer", "Boat Builder", "Drowning", "On a Palm Tree"}},
		{Name: "Five Star Dungeon", Roles: []string{"Speedrunner", "Completionist", "Boss Fighter", "Chest Opener", "Secret Finder", "Undergeared Struggler", "Loot Collector"}},
		{Name: "Trove Inventory", Roles: []string{"Hoarder", "Organizer", "Searching for Item", "Salvaging Items", "Counting Flux", "Lost in Tabs", "Inventory Full Victim"}},
		{Name: "Trove Character Sheet", Roles: []string{"Min-Maxer", "Checking Stats", "Gem Manager", "Ally Equipper", "Build Optimizer", "Fashion Designer", "Confused Player"}},
		{Name: "Trove Discord Server", Roles: []string{"Lurker", "Active Chatter", "Meme Poster", "Help Seeker", "Veteran Helper", "Drama Starter", "Bot Commander"}},
	}
}

// Find looks a location up by name, ignoring case.
func (c Catalog) Find(name string) (Location, bool) {
	for _, loc := range c {
		if strings.EqualFold(loc.Name, name) {
			return loc, true
		}
	}
	return Location{}, false
}

// Resolve accepts either a location name or its 1-based position in the catalog.
func (c Catalog) Resolve(guess string) (Location, bool) {
	guess = strings.TrimSpace(guess)
	if loc, ok := c.Find(guess); ok {
		return loc, true
	}
	if n, err := strconv.Atoi(guess); err == nil && n >= 1 && n <= len(c) {
		return c[n-1], true
	}
	return Location{}, false
}

// Names returns the location names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, loc := range c {
		names[i] = loc.Name
	}
	return names
}
