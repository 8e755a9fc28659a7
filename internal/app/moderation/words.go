package moderation

// BaseWords is the general-purpose English blocklist used to reject messages outright.
var BaseWords = []string{
	"arse", "arsehole", "asshole", "bastard", "bitch", "bollocks", "bullshit",
	"cock", "crap", "cunt", "dick", "dickhead", "fuck", "fucker", "fucking",
	"motherfucker", "piss", "prick", "pussy", "shit", "shitty", "slut",
	"twat", "wank", "wanker", "whore",
}

// CustomWords blocks the name of one organization and its usual disguises.
// Plain letter spellings are masked in delivered messages; separator, symbol,
// digit and non-Latin spellings are treated as evasion and rejected.
var CustomWords = []string{
	// English spellings
	"HSBC", "hsbcbank", "hsbcgroup",
	// Chinese names
	"汇丰", "汇丰银行", "滙豐", "滙豐銀行",
	// English + Chinese
	"hsbc银行", "hsbc集團",
	// Pinyin
	"huifeng", "huifengyinhang", "huifengbank",
	// Space separated
	"H S B C",
	// Symbol separated
	"H-S-B-C", "H_S_B_C", "H.S.B.C",
	// Mixed script
	"汇丰bank", "滙豐bank", "huifeng银行",
	// Look-alike characters
	"h$bc", "h5bc", "h$bc银行",
}
