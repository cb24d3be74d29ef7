package usecase

// RotationIndex picks the talking point offered to the prospect at batch
// position. It depends only on position, so equal inputs always rotate equally.
func RotationIndex(position, count int) int {
	if count <= 0 || position < 0 {
		return 0
	}
	return position % count
}
