package storage

// SeedTexts is a starter corpus loaded when no CSV file is given
var SeedTexts = []string{
	// Pangrams
	"The quick brown fox jumps over the lazy dog.",
	"Pack my box with five dozen liquor jugs.",
	"How vexingly quick daft zebras jump!",
	"Sphinx of black quartz, judge my vow.",
	"The five boxing wizards jump quickly.",

	// Proverbs
	"A journey of a thousand miles begins with a single step.",
	"Practice makes perfect, but nobody is perfect, so why practice?",
	"Slow and steady wins the race.",
	"Actions speak louder than words.",
	"Fortune favors the bold.",

	// Programming
	"Simplicity is prerequisite for reliability.",
	"Premature optimization is the root of all evil.",
	"Clear is better than clever.",
	"Do not communicate by sharing memory; share memory by communicating.",
	"Errors are values.",

	// Nature
	"The river hummed softly beneath the old stone bridge.",
	"Thunder rolled across the valley as the first drops of rain fell.",
	"A single lantern glowed at the end of the misty harbor.",
	"The glacier crept forward a few inches every winter.",
	"Fireflies blinked above the tall grass on a warm summer night.",
}
