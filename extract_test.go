package instacrawl

import (
	"errors"
	"testing"

	"github.com/tidwall/gjson"
)

// ---------------------------------------------------------------------------
// Identifiers
// ---------------------------------------------------------------------------

func TestExtractID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"numeric pk", `{"pk":123}`, "123"},
		{"string id", `{"id":"456"}`, "456"},
		{"pk wins over id", `{"pk":123,"id":456}`, "123"},
		{"plain string", `"789"`, "789"},
		{"plain number", `42`, "42"},
		{"neither", `{"name":"x"}`, ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := extractID(gjson.Parse(tt.raw))
			if got != tt.want {
				t.Errorf("extractID(%s) = %q, want %q", tt.raw, got, tt.want)
			}
			// Feeding an extracted id back in yields the same value.
			if again := extractID(gjson.Parse(`"` + got + `"`)); again != got {
				t.Errorf("extractID not idempotent: %q -> %q", got, again)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Media types
// ---------------------------------------------------------------------------

func TestMediaTypeOf(t *testing.T) {
	t.Parallel()
	tests := []struct {
		mediaType   int64
		productType string
		want        string
		wantErr     error
	}{
		{1, "feed", MediaTypePhoto, nil},
		{1, "anything", MediaTypePhoto, nil},
		{2, "feed", MediaTypeVideo, nil},
		{2, "igtv", MediaTypeIGTV, nil},
		{2, "clips", MediaTypeReel, nil},
		{2, "bogus", "", ErrInvalidProductType},
		{2, "", "", ErrInvalidProductType},
		{8, "feed", MediaTypeAlbum, nil},
		{8, "", MediaTypeAlbum, nil},
		{3, "feed", "", ErrInvalidMediaType},
		{0, "", "", ErrInvalidMediaType},
	}
	for _, tt := range tests {
		got, err := mediaTypeOf(tt.mediaType, tt.productType)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("mediaTypeOf(%d, %q) error = %v, want %v",
					tt.mediaType, tt.productType, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("mediaTypeOf(%d, %q) = %q, %v; want %q",
				tt.mediaType, tt.productType, got, err, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// URL extraction
// ---------------------------------------------------------------------------

func TestExtractPostURLs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			"video takes last version",
			`{"media_type":2,"video_versions":[{"url":"low"},{"url":"mid"},{"url":"high"}]}`,
			[]string{"high"},
		},
		{
			"album takes first candidate per item",
			`{"media_type":8,"carousel_media":[
				{"image_versions2":{"candidates":[{"url":"a1"},{"url":"a2"}]}},
				{"image_versions2":{"candidates":[{"url":"b1"}]}}]}`,
			[]string{"a1", "b1"},
		},
		{
			"photo takes first candidate",
			`{"media_type":1,"image_versions2":{"candidates":[{"url":"p1"},{"url":"p2"}]}}`,
			[]string{"p1"},
		},
		{"video without versions", `{"media_type":2}`, []string{}},
		{"photo without candidates", `{"media_type":1}`, []string{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := extractPostURLs(gjson.Parse(tt.raw))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("url[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Music
// ---------------------------------------------------------------------------

func TestExtractMusicDiscriminator(t *testing.T) {
	t.Parallel()
	licensed := `{"clips_metadata":{"audio_type":"licensed_music","music_info":{
		"music_asset_info":{"audio_cluster_id":"111","title":"Song","display_artist":"Artist",
			"duration_in_ms":30000,"progressive_download_url":"https://cdn/song.mp3"},
		"music_consumption_info":{"is_trending_in_clips":true}}}}`
	original := `{"clips_metadata":{"audio_type":"original_sounds","original_sound_info":{
		"audio_asset_id":"222","original_audio_title":"Og","duration_in_ms":15000,
		"ig_artist":{"pk":9,"username":"maker"}}}}`
	probeLicensed := `{"clips_metadata":{"music_info":{
		"music_asset_info":{"audio_cluster_id":"333","title":"Probe"}}}}`
	probeOriginal := `{"clips_metadata":{"original_sound_info":{"audio_asset_id":"444"}}}`
	probeBoth := `{"clips_metadata":{
		"music_info":{"music_asset_info":{"audio_cluster_id":"555"}},
		"original_sound_info":{"audio_asset_id":"666"}}}`

	tests := []struct {
		name   string
		raw    string
		wantID string
	}{
		{"licensed music", licensed, "111"},
		{"original sound", original, "222"},
		{"probe prefers licensed", probeBoth, "555"},
		{"probe licensed only", probeLicensed, "333"},
		{"probe original only", probeOriginal, "444"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			music := extractMusic(gjson.Parse(tt.raw))
			if music == nil {
				t.Fatal("expected music metadata")
			}
			if music.ID != tt.wantID {
				t.Errorf("music id = %q, want %q", music.ID, tt.wantID)
			}
		})
	}

	if m := extractMusic(gjson.Parse(`{"like_count":1}`)); m != nil {
		t.Errorf("expected nil music without metadata, got %+v", m)
	}
	if m := extractMusic(gjson.Parse(`{"clips_metadata":{"audio_type":"weird"}}`)); m != nil {
		t.Errorf("expected nil music for unknown type without sub-objects, got %+v", m)
	}
}

func TestExtractMusicFields(t *testing.T) {
	t.Parallel()
	raw := `{"clips_metadata":{"audio_type":"licensed_music","music_info":{
		"music_asset_info":{"audio_cluster_id":"111","title":"Song","display_artist":"Artist",
			"duration_in_ms":30000,"progressive_download_url":"https://cdn/song.mp3"},
		"music_consumption_info":{"is_trending_in_clips":true}}}}`
	music := extractMusic(gjson.Parse(raw))
	if music == nil {
		t.Fatal("expected music")
	}
	if music.Title != "Song" || music.DurationInMS != 30000 || !music.IsTrendingInClips {
		t.Errorf("unexpected fields: %+v", music)
	}
	if music.Artist == nil || music.Artist.Fullname != "Artist" {
		t.Errorf("expected display artist name, got %+v", music.Artist)
	}
}

// ---------------------------------------------------------------------------
// Posts
// ---------------------------------------------------------------------------

func TestExtractPostAccessibilityDefault(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"falls back to caption text",
			`{"pk":1,"media_type":1,"caption":{"pk":2,"text":"hello"}}`,
			"hello",
		},
		{
			"explicit caption wins",
			`{"pk":1,"media_type":1,"caption":{"pk":2,"text":"hello"},"accessibility_caption":"a photo"}`,
			"a photo",
		},
		{
			"no caption at all",
			`{"pk":1,"media_type":1}`,
			"",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			post, err := extractPost(gjson.Parse(tt.raw))
			if err != nil {
				t.Fatalf("extractPost: %v", err)
			}
			if post.AccessibilityCaption != tt.want {
				t.Errorf("accessibility = %q, want %q", post.AccessibilityCaption, tt.want)
			}
		})
	}
}

func TestExtractPostNullCaption(t *testing.T) {
	t.Parallel()
	post, err := extractPost(gjson.Parse(`{"pk":1,"media_type":1,"caption":null}`))
	if err != nil {
		t.Fatalf("extractPost: %v", err)
	}
	if post.Caption != nil {
		t.Errorf("expected nil caption, got %+v", post.Caption)
	}
}

func TestExtractPostInvalidMediaType(t *testing.T) {
	t.Parallel()
	if _, err := extractPost(gjson.Parse(`{"pk":1,"media_type":3}`)); !errors.Is(err, ErrInvalidMediaType) {
		t.Errorf("expected ErrInvalidMediaType, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Comments
// ---------------------------------------------------------------------------

func TestExtractCommentTimestampFallback(t *testing.T) {
	t.Parallel()
	withUTC := extractComment(gjson.Parse(
		`{"pk":1,"user":{"pk":2,"username":"u"},"text":"hi","created_at":10,"created_at_utc":20}`), "555")
	if withUTC.CreatedAtUTC != 20 {
		t.Errorf("expected created_at_utc to win, got %d", withUTC.CreatedAtUTC)
	}
	withoutUTC := extractComment(gjson.Parse(
		`{"pk":1,"user":{"pk":2,"username":"u"},"text":"hi","created_at":10}`), "555")
	if withoutUTC.CreatedAtUTC != 10 {
		t.Errorf("expected created_at fallback, got %d", withoutUTC.CreatedAtUTC)
	}
	if withoutUTC.PostID != "555" || withoutUTC.User.Username != "u" {
		t.Errorf("unexpected comment: %+v", withoutUTC)
	}
}
