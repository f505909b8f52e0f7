package fallback

// builtinConfusables maps common Bengali misspellings to their standard
// forms. The first variant is the preferred one.
var builtinConfusables = map[string][]string{
	"সম্বব":        {"সম্ভব"},
	"সম্ববত":       {"সম্ভবত"},
	"অসম্বব":       {"অসম্ভব"},
	"চাকুরিজিবি":   {"চাকরিজীবী"},
	"চট্রগ্রাম":    {"চট্টগ্রাম"},
	"চট্রগ্রামে":   {"চট্টগ্রামে"},
	"ছারপত্র":      {"ছাড়পত্র"},
	"উজ্জল":        {"উজ্জ্বল"},
	"সন্মান":       {"সম্মান"},
	"মুহুর্ত":      {"মুহূর্ত"},
	"মুহুর্তে":     {"মুহূর্তে"},
	"পুরষ্কার":     {"পুরস্কার"},
	"অত্যান্ত":     {"অত্যন্ত"},
	"ব্যাক্তি":     {"ব্যক্তি"},
	"ব্যাক্তিগত":   {"ব্যক্তিগত"},
	"নিরবতা":       {"নীরবতা"},
	"সমিচীন":       {"সমীচীন"},
	"শ্রদ্ধাঞ্জলী": {"শ্রদ্ধাঞ্জলি"},
	"দারিদ্রতা":    {"দারিদ্র্য", "দরিদ্রতা"},
	"আকাংখা":       {"আকাঙ্ক্ষা"},
	"ইতিমধ্যে":     {"ইতোমধ্যে"},
	"স্বরস্বতী":    {"সরস্বতী"},
	"বাল্মিকী":     {"বাল্মীকি"},
	"প্রানী":       {"প্রাণী"},
	"কৌতুহল":       {"কৌতূহল"},
	"দূরাবস্থা":    {"দুরবস্থা"},
	"উপরোক্ত":      {"উপর্যুক্ত"},
	"স্বত্ত্বেও":   {"সত্ত্বেও"},
	"ইদানিং":       {"ইদানীং"},
	"শারিরীক":      {"শারীরিক"},
}
