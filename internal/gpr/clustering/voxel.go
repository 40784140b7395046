package clustering

// Voxel is one above-threshold grid sample. X is the longitudinal index,
// Y the transverse index and Z the depth index.
type Voxel struct {
	X, Y, Z   uint32
	Amplitude int16
}

// within reports whether v and o are within the per-axis gap tolerances.
func (v Voxel) within(o Voxel, gx, gy, gz uint32) bool {
	return absDiff(v.X, o.X) <= gx && absDiff(v.Y, o.Y) <= gy && absDiff(v.Z, o.Z) <= gz
}
