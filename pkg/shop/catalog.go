package shop

import (
	"strings"

	"github.com/samber/lo"
)

// Tier 种子稀有度
type Tier string

const (
	TierCommon    Tier = "COMMON"
	TierUncommon  Tier = "UNCOMMON"
	TierRare      Tier = "RARE"
	TierLegendary Tier = "LEGENDARY"
	TierMythical  Tier = "MYTHICAL"
	TierDivine    Tier = "DIVINE"
	TierCelestial Tier = "CELESTIAL"
)

// TierSeeds 一个稀有度下的种子
type TierSeeds struct {
	Tier  Tier
	Seeds []string
}

// Catalog 商店种子目录，按稀有度从低到高
var Catalog = []TierSeeds{
	{TierCommon, []string{"Carrot", "Strawberry", "Aloe"}},
	{TierUncommon, []string{"Fava Bean", "Blueberry", "Apple", "Tulip", "Tomato"}},
	{TierRare, []string{"Daffodil", "Corn", "Watermelon", "Pumpkin", "Echeveria"}},
	{TierLegendary, []string{"Coconut", "Banana", "Lily", "Camellia", "Burro's Tail"}},
	{TierMythical, []string{"Mushroom", "Cactus", "Bamboo", "Chrysanthemum", "Grape"}},
	{TierDivine, []string{"Pepper", "Lemon", "Passion Fruit", "Dragon Fruit", "Cacao", "Lychee", "Sunflower"}},
	{TierCelestial, []string{"Starweaver", "Dawnbinder", "Moonbinder"}},
}

// AllSeeds 目录中的全部种子
func AllSeeds() []string {
	return lo.FlatMap(Catalog, func(t TierSeeds, _ int) []string {
		return t.Seeds
	})
}

// TierOf 查找种子的稀有度（不区分大小写）
func TierOf(seed string) (Tier, bool) {
	for _, t := range Catalog {
		if lo.ContainsBy(t.Seeds, func(s string) bool { return strings.EqualFold(s, seed) }) {
			return t.Tier, true
		}
	}
	return "", false
}

// TemplateName 种子对应的商店文字模板，如 "Burro's Tail" → "text_burro's_tail.png"
func TemplateName(seed string) string {
	return "text_" + strings.ReplaceAll(strings.ToLower(strings.TrimSpace(seed)), " ", "_") + ".png"
}
