package playlist

// Assemble packs candidates into a playlist whose total duration does not
// exceed targetDurationSeconds. Candidates are scanned in the order given
// (the provider has already ranked them by popularity); a candidate that
// would push the total over the target is skipped, not a stopping point,
// because a later shorter candidate may still fit. The scan stops once the
// running total reaches the target.
//
// Every admitted song is stamped with targetTempo and genre rather than a
// per-track measurement: the playlist matches the reference tempo by
// selection, not by re-verifying each candidate.
//
// An empty result (no candidate fits) is valid, not an error.
func Assemble(candidates []Track, targetTempo, targetDurationSeconds int, genre string) Result {
	result := Result{
		Songs:          []Song{},
		TargetTempoBPM: targetTempo,
		Genres:         []string{},
	}

	total := 0
	for _, c := range candidates {
		d := c.DurationSeconds()
		if total+d <= targetDurationSeconds {
			result.Songs = append(result.Songs, Song{
				ID:              c.ID,
				Title:           c.Title,
				Artist:          c.ArtistDisplay(),
				Album:           c.Album,
				TempoBPM:        targetTempo,
				Genre:           genre,
				DurationSeconds: d,
				SourceTrackID:   c.ID,
				PreviewURL:      c.PreviewURL,
			})
			total += d
		}
		if total >= targetDurationSeconds {
			break
		}
	}

	result.TotalDurationSeconds = total
	if genre != "" {
		result.Genres = []string{genre}
	}
	return result
}
