package ui

// iconBytes is a 16x16 PNG of a timeline strip.
var iconBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff, 0x61, 0x00, 0x00, 0x00,
	0x22, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x60, 0x18, 0x3e, 0x40,
	0x23, 0xea, 0xc4, 0x7f, 0x52, 0x30, 0xf5, 0x0d, 0xf8, 0x4f, 0x22, 0x18,
	0x84, 0x5e, 0x18, 0x0d, 0x44, 0x2a, 0x18, 0x30, 0x74, 0x01, 0x00, 0x73,
	0xf1, 0x3b, 0x10, 0x06, 0x2f, 0xcb, 0x7c, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
