package grbl

// GRBL v1.1 real-time command bytes. Each is acted on by the firmware the
// moment it is read from the serial receive interrupt; none of them is
// line-framed and none of them produces an "ok" reply.
const (
	rtStatusQuery byte = '?'
	rtCycleStart  byte = '~'
	rtFeedHold    byte = '!'
	rtSoftReset   byte = 0x18 // ctrl-x
	rtJogCancel   byte = 0x85

	rtFeedReset    byte = 0x90 // feed override to 100%
	rtFeedPlus10   byte = 0x91
	rtFeedMinus10  byte = 0x92
	rtRapidFull    byte = 0x95 // rapid override 100%
	rtRapidHalf    byte = 0x96 // 50%
	rtRapidQuarter byte = 0x97 // 25%

	rtSpindleReset   byte = 0x99 // spindle override to 100%
	rtSpindlePlus10  byte = 0x9A
	rtSpindleMinus10 byte = 0x9B
)
