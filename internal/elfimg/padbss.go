package elfimg

// PadBSS materializes zero-initialized memory in a raw upload image.
//
// The raw image produced by objcopy contains no bytes for zero-fill
// sections, but the device loader performs a flat copy with no zero-fill
// step of its own. PadBSS first pads the image to the target's 4-byte word
// alignment, then appends one zero byte for every byte of zero-fill section
// size, reproducing the memory state the linker assumed when it assigned
// addresses. An already aligned image with no zero-fill sections is
// returned unchanged.
func PadBSS(image []byte, sections map[string]Section) []byte {
	alignmentPadding := (4 - len(image)%4) % 4

	var bssSize uint64
	for _, s := range sections {
		if s.Type == TypeNoBits {
			bssSize += s.Size
		}
	}

	if alignmentPadding == 0 && bssSize == 0 {
		return image
	}

	padded := make([]byte, len(image)+alignmentPadding+int(bssSize))
	copy(padded, image)
	return padded
}
