package ganzhi

import "github.com/pbaille/bazi/internal/domain"

var standardStems = []StemInfo{
	{Name: domain.Jia, Glyph: "甲", Element: domain.Wood, Polarity: domain.Yang, Partner: domain.Ji, Combines: domain.Earth},
	{Name: domain.Yi, Glyph: "乙", Element: domain.Wood, Polarity: domain.Yin, Partner: domain.Geng, Combines: domain.Metal},
	{Name: domain.Bing, Glyph: "丙", Element: domain.Fire, Polarity: domain.Yang, Partner: domain.Xin, Combines: domain.Water},
	{Name: domain.Ding, Glyph: "丁", Element: domain.Fire, Polarity: domain.Yin, Partner: domain.Ren, Combines: domain.Wood},
	{Name: domain.Wu, Glyph: "戊", Element: domain.Earth, Polarity: domain.Yang, Partner: domain.Gui, Combines: domain.Fire},
	{Name: domain.Ji, Glyph: "己", Element: domain.Earth, Polarity: domain.Yin, Partner: domain.Jia, Combines: domain.Earth},
	{Name: domain.Geng, Glyph: "庚", Element: domain.Metal, Polarity: domain.Yang, Partner: domain.Yi, Combines: domain.Metal},
	{Name: domain.Xin, Glyph: "辛", Element: domain.Metal, Polarity: domain.Yin, Partner: domain.Bing, Combines: domain.Water},
	{Name: domain.Ren, Glyph: "壬", Element: domain.Water, Polarity: domain.Yang, Partner: domain.Ding, Combines: domain.Wood},
	{Name: domain.Gui, Glyph: "癸", Element: domain.Water, Polarity: domain.Yin, Partner: domain.Wu, Combines: domain.Fire},
}

func qi(entries ...domain.QiEntry) []domain.QiEntry { return entries }

func q(s domain.Stem, score float64) domain.QiEntry {
	return domain.QiEntry{Stem: s, Score: score}
}

var standardBranches = []BranchInfo{
	{Name: domain.BranchZi, Glyph: "子", Element: domain.Water, Polarity: domain.Yang,
		Qi:    qi(q(domain.Gui, 100)),
		Clash: domain.BranchWu, Harmony: domain.BranchChou, HarmonyElement: domain.Earth, Season: domain.Water},
	{Name: domain.BranchChou, Glyph: "丑", Element: domain.Earth, Polarity: domain.Yin,
		Qi:    qi(q(domain.Ji, 100), q(domain.Gui, 30), q(domain.Xin, 20)),
		Clash: domain.BranchWei, Harmony: domain.BranchZi, HarmonyElement: domain.Earth, Season: domain.Earth},
	{Name: domain.BranchYin, Glyph: "寅", Element: domain.Wood, Polarity: domain.Yang,
		Qi:    qi(q(domain.Jia, 100), q(domain.Bing, 30), q(domain.Wu, 20)),
		Clash: domain.BranchShen, Harmony: domain.BranchHai, HarmonyElement: domain.Wood, Season: domain.Wood},
	{Name: domain.BranchMao, Glyph: "卯", Element: domain.Wood, Polarity: domain.Yin,
		Qi:    qi(q(domain.Yi, 100)),
		Clash: domain.BranchYou, Harmony: domain.BranchXu, HarmonyElement: domain.Fire, Season: domain.Wood},
	{Name: domain.BranchChen, Glyph: "辰", Element: domain.Earth, Polarity: domain.Yang,
		Qi:    qi(q(domain.Wu, 100), q(domain.Yi, 30), q(domain.Gui, 20)),
		Clash: domain.BranchXu, Harmony: domain.BranchYou, HarmonyElement: domain.Metal, Season: domain.Earth},
	{Name: domain.BranchSi, Glyph: "巳", Element: domain.Fire, Polarity: domain.Yin,
		Qi:    qi(q(domain.Bing, 100), q(domain.Geng, 30), q(domain.Wu, 20)),
		Clash: domain.BranchHai, Harmony: domain.BranchShen, HarmonyElement: domain.Water, Season: domain.Fire},
	{Name: domain.BranchWu, Glyph: "午", Element: domain.Fire, Polarity: domain.Yang,
		Qi:    qi(q(domain.Ding, 100), q(domain.Ji, 30)),
		Clash: domain.BranchZi, Harmony: domain.BranchWei, HarmonyElement: domain.Fire, Season: domain.Fire},
	{Name: domain.BranchWei, Glyph: "未", Element: domain.Earth, Polarity: domain.Yin,
		Qi:    qi(q(domain.Ji, 100), q(domain.Ding, 30), q(domain.Yi, 20)),
		Clash: domain.BranchChou, Harmony: domain.BranchWu, HarmonyElement: domain.Fire, Season: domain.Earth},
	{Name: domain.BranchShen, Glyph: "申", Element: domain.Metal, Polarity: domain.Yang,
		Qi:    qi(q(domain.Geng, 100), q(domain.Ren, 30), q(domain.Wu, 20)),
		Clash: domain.BranchYin, Harmony: domain.BranchSi, HarmonyElement: domain.Water, Season: domain.Metal},
	{Name: domain.BranchYou, Glyph: "酉", Element: domain.Metal, Polarity: domain.Yin,
		Qi:    qi(q(domain.Xin, 100)),
		Clash: domain.BranchMao, Harmony: domain.BranchChen, HarmonyElement: domain.Metal, Season: domain.Metal},
	{Name: domain.BranchXu, Glyph: "戌", Element: domain.Earth, Polarity: domain.Yang,
		Qi:    qi(q(domain.Wu, 100), q(domain.Xin, 30), q(domain.Ding, 20)),
		Clash: domain.BranchChen, Harmony: domain.BranchMao, HarmonyElement: domain.Fire, Season: domain.Earth},
	{Name: domain.BranchHai, Glyph: "亥", Element: domain.Water, Polarity: domain.Yin,
		Qi:    qi(q(domain.Ren, 100), q(domain.Jia, 30)),
		Clash: domain.BranchSi, Harmony: domain.BranchYin, HarmonyElement: domain.Wood, Season: domain.Water},
}

var standardRelations = Relations{
	Frames: []Trio{
		{Branches: [3]domain.Branch{domain.BranchShen, domain.BranchZi, domain.BranchChen}, Element: domain.Water},
		{Branches: [3]domain.Branch{domain.BranchHai, domain.BranchMao, domain.BranchWei}, Element: domain.Wood},
		{Branches: [3]domain.Branch{domain.BranchYin, domain.BranchWu, domain.BranchXu}, Element: domain.Fire},
		{Branches: [3]domain.Branch{domain.BranchSi, domain.BranchYou, domain.BranchChou}, Element: domain.Metal},
	},
	Directions: []Trio{
		{Branches: [3]domain.Branch{domain.BranchYin, domain.BranchMao, domain.BranchChen}, Element: domain.Wood},
		{Branches: [3]domain.Branch{domain.BranchSi, domain.BranchWu, domain.BranchWei}, Element: domain.Fire},
		{Branches: [3]domain.Branch{domain.BranchShen, domain.BranchYou, domain.BranchXu}, Element: domain.Metal},
		{Branches: [3]domain.Branch{domain.BranchHai, domain.BranchZi, domain.BranchChou}, Element: domain.Water},
	},
	// Ungrateful and bullying punishments.
	Punishments: []Trio{
		{Branches: [3]domain.Branch{domain.BranchYin, domain.BranchSi, domain.BranchShen}},
		{Branches: [3]domain.Branch{domain.BranchChou, domain.BranchXu, domain.BranchWei}},
	},
	PunishmentPairs: []Pair{{domain.BranchZi, domain.BranchMao}},
	SelfPunishing:   []domain.Branch{domain.BranchChen, domain.BranchWu, domain.BranchYou, domain.BranchHai},
	Harms: []Pair{
		{domain.BranchZi, domain.BranchWei},
		{domain.BranchChou, domain.BranchWu},
		{domain.BranchYin, domain.BranchSi},
		{domain.BranchMao, domain.BranchChen},
		{domain.BranchShen, domain.BranchHai},
		{domain.BranchYou, domain.BranchXu},
	},
	Destructions: []Pair{
		{domain.BranchZi, domain.BranchYou},
		{domain.BranchChou, domain.BranchChen},
		{domain.BranchYin, domain.BranchHai},
		{domain.BranchMao, domain.BranchWu},
		{domain.BranchSi, domain.BranchShen},
		{domain.BranchWei, domain.BranchXu},
	},
}
