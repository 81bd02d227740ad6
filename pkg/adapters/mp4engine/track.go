package mp4engine

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Codec names the video coding format of a track.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecVP9     Codec = "vp9"
	CodecUnknown Codec = "unknown"
)

// ErrNoVideoTrack is returned when a file carries no video track.
var ErrNoVideoTrack = errors.New("mp4engine: no video track found")

// Sample is one access unit in presentation order.
type Sample struct {
	// PresentationTime is relative to the first presented sample.
	PresentationTime time.Duration
	Duration         time.Duration
	Sync             bool
	Data             []byte
}

// Track is the timing index of a clip's video track.
type Track struct {
	Codec      Codec
	Timescale  uint32
	Width      int
	Height     int
	Fragmented bool
	Samples    []Sample

	duration      time.Duration
	frameDuration time.Duration
}

// Duration returns the end of the last sample.
func (t *Track) Duration() time.Duration {
	return t.duration
}

// FrameDuration returns the most common sample duration.
func (t *Track) FrameDuration() time.Duration {
	return t.frameDuration
}

// SyncCount returns the number of sync samples.
func (t *Track) SyncCount() int {
	n := 0
	for _, s := range t.Samples {
		if s.Sync {
			n++
		}
	}
	return n
}

// SampleAt returns the index of the sample displayed at itemTime:
// the last one whose presentation time is not after it.
func (t *Track) SampleAt(itemTime time.Duration) int {
	i := sort.Search(len(t.Samples), func(i int) bool {
		return t.Samples[i].PresentationTime > itemTime
	})
	if i == 0 {
		return 0
	}
	return i - 1
}

// SyncBefore returns the index of the nearest sync sample at or before index.
func (t *Track) SyncBefore(index int) int {
	for i := index; i >= 0; i-- {
		if t.Samples[i].Sync {
			return i
		}
	}
	return 0
}

// Probe parses MP4 data and indexes its first video track.
// Both progressive and fragmented files are supported.
func Probe(data []byte) (*Track, error) {
	file, err := mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	var track *Track
	if file.IsFragmented() {
		track, err = probeFragmented(file)
	} else {
		track, err = probeProgressive(file, data)
	}
	if err != nil {
		return nil, err
	}
	if len(track.Samples) == 0 {
		return nil, fmt.Errorf("mp4engine: video track has no samples")
	}

	track.finish()
	return track, nil
}

func videoTrak(moov *mp4.MoovBox) *mp4.TrakBox {
	if moov == nil {
		return nil
	}
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

func newTrack(trak *mp4.TrakBox) *Track {
	t := &Track{Codec: CodecUnknown, Timescale: 1000}
	if trak.Mdia.Mdhd != nil && trak.Mdia.Mdhd.Timescale > 0 {
		t.Timescale = trak.Mdia.Mdhd.Timescale
	}
	if trak.Tkhd != nil {
		t.Width = int(trak.Tkhd.Width >> 16)
		t.Height = int(trak.Tkhd.Height >> 16)
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return t
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			t.Codec = CodecH264
		case "hvc1", "hev1":
			t.Codec = CodecHEVC
		case "av01":
			t.Codec = CodecAV1
		case "vp09":
			t.Codec = CodecVP9
		}
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok && vse.Width > 0 {
			t.Width = int(vse.Width)
			t.Height = int(vse.Height)
		}
	}
	return t
}

func probeFragmented(file *mp4.File) (*Track, error) {
	var moov *mp4.MoovBox
	if file.Init != nil {
		moov = file.Init.Moov
	}
	if moov == nil {
		moov = file.Moov
	}
	trak := videoTrak(moov)
	if trak == nil {
		return nil, ErrNoVideoTrack
	}
	track := newTrack(trak)
	track.Fragmented = true

	trackID := trak.Tkhd.TrackID
	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var pts []int64
	for _, seg := range file.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return nil, fmt.Errorf("get samples: %w", err)
			}
			for _, s := range samples {
				pts = append(pts, int64(s.DecodeTime)+int64(s.CompositionTimeOffset))
				track.Samples = append(track.Samples, Sample{
					Duration: track.toDuration(int64(s.Dur)),
					Sync:     s.IsSync(),
					Data:     s.Data,
				})
			}
		}
	}
	track.setPresentationTimes(pts)
	return track, nil
}

func probeProgressive(file *mp4.File, data []byte) (*Track, error) {
	trak := videoTrak(file.Moov)
	if trak == nil {
		return nil, ErrNoVideoTrack
	}
	track := newTrack(trak)

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return nil, fmt.Errorf("mp4engine: no sample table found")
	}
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil || stbl.Stts == nil {
		return nil, fmt.Errorf("mp4engine: missing stsz or stts box")
	}

	syncSamples := make(map[uint32]bool)
	if stbl.Stss != nil {
		for _, nr := range stbl.Stss.SampleNumber {
			syncSamples[nr] = true
		}
	}

	count := stbl.Stsz.SampleNumber
	pts := make([]int64, 0, count)
	for nr := uint32(1); nr <= count; nr++ {
		decodeTime, dur := stbl.Stts.GetDecodeTime(nr)
		var cto int64
		if stbl.Ctts != nil {
			cto = int64(stbl.Ctts.GetCompositionTimeOffset(nr))
		}
		payload, err := sampleData(stbl, data, nr)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", nr, err)
		}
		pts = append(pts, int64(decodeTime)+cto)
		track.Samples = append(track.Samples, Sample{
			Duration: track.toDuration(int64(dur)),
			Sync:     stbl.Stss == nil || syncSamples[nr],
			Data:     payload,
		})
	}
	track.setPresentationTimes(pts)
	return track, nil
}

// sampleData slices a progressive sample out of the file without copying.
func sampleData(stbl *mp4.StblBox, data []byte, nr uint32) ([]byte, error) {
	if stbl.Stsc == nil {
		return nil, fmt.Errorf("missing stsc box")
	}
	chunkNr, firstSampleInChunk, err := stbl.Stsc.ChunkNrFromSampleNr(int(nr))
	if err != nil {
		return nil, fmt.Errorf("get chunk nr: %w", err)
	}

	var offset uint64
	switch {
	case stbl.Stco != nil:
		offset, err = stbl.Stco.GetOffset(chunkNr)
		if err != nil {
			return nil, fmt.Errorf("get chunk offset: %w", err)
		}
	case stbl.Co64 != nil:
		if chunkNr < 1 || chunkNr > len(stbl.Co64.ChunkOffset) {
			return nil, fmt.Errorf("chunk nr out of range")
		}
		offset = stbl.Co64.ChunkOffset[chunkNr-1]
	default:
		return nil, fmt.Errorf("no stco or co64 box")
	}

	for s := uint32(firstSampleInChunk); s < nr; s++ {
		offset += uint64(stbl.Stsz.GetSampleSize(int(s)))
	}
	end := offset + uint64(stbl.Stsz.GetSampleSize(int(nr)))
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("sample past end of file")
	}
	return data[offset:end], nil
}

func (t *Track) toDuration(units int64) time.Duration {
	return time.Duration(units * int64(time.Second) / int64(t.Timescale))
}

// setPresentationTimes assigns presentation times from composition times
// in timescale units, rebased so the first presented sample is at zero,
// and sorts samples into presentation order.
func (t *Track) setPresentationTimes(pts []int64) {
	if len(pts) == 0 {
		return
	}
	first := pts[0]
	for _, p := range pts {
		first = min(first, p)
	}
	for i := range t.Samples {
		t.Samples[i].PresentationTime = t.toDuration(pts[i] - first)
	}
	sort.SliceStable(t.Samples, func(i, j int) bool {
		return t.Samples[i].PresentationTime < t.Samples[j].PresentationTime
	})
}

func (t *Track) finish() {
	counts := make(map[time.Duration]int)
	for _, s := range t.Samples {
		if s.Duration > 0 {
			counts[s.Duration]++
		}
	}
	for d, n := range counts {
		if n > counts[t.frameDuration] || (n == counts[t.frameDuration] && d < t.frameDuration) {
			t.frameDuration = d
		}
	}

	last := t.Samples[len(t.Samples)-1]
	t.duration = last.PresentationTime + last.Duration
	if t.frameDuration == 0 {
		t.frameDuration = t.duration / time.Duration(len(t.Samples))
	}
	if last.Duration == 0 {
		t.duration += t.frameDuration
	}
}
