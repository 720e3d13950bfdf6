package instacrawl

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Raw-JSON traversal of Instagram's upstream shapes is confined to this
// file. Everything here is a pure function from a gjson value to one
// canonical record; optional fields default to zero values, never errors.

// extractID returns the item's identifier as a string. Upstream supplies
// ids as integer "pk" or string "id", sometimes both; pk wins. Passing an
// already-extracted plain value back in yields the same string.
func extractID(v gjson.Result) string {
	if v.Type != gjson.JSON {
		return v.String()
	}
	if pk := v.Get("pk"); pk.Exists() {
		return pk.String()
	}
	return v.Get("id").String()
}

// mediaTypeOf resolves the numeric media_type plus product_type pair into
// the canonical enum. product_type is only consulted for the video family.
// Unknown combinations never occur for legitimately captured data, so they
// surface loudly instead of being coerced.
func mediaTypeOf(mediaType int64, productType string) (string, error) {
	switch mediaType {
	case 1:
		return MediaTypePhoto, nil
	case 2:
		switch productType {
		case "feed":
			return MediaTypeVideo, nil
		case "igtv":
			return MediaTypeIGTV, nil
		case "clips":
			return MediaTypeReel, nil
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidProductType, productType)
		}
	case 8:
		return MediaTypeAlbum, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrInvalidMediaType, mediaType)
	}
}

// extractPostURLs picks the download urls for one item. Video variants take
// the last video_versions entry (upstream orders lowest to highest quality),
// albums take the first image candidate of every carousel item, everything
// else takes the first candidate of the single image_versions2 list.
func extractPostURLs(item gjson.Result) []string {
	urls := []string{}
	switch item.Get("media_type").Int() {
	case 2:
		versions := item.Get("video_versions").Array()
		if len(versions) > 0 {
			urls = append(urls, versions[len(versions)-1].Get("url").String())
		}
	case 8:
		for _, media := range item.Get("carousel_media").Array() {
			if u := media.Get("image_versions2.candidates.0.url"); u.Exists() {
				urls = append(urls, u.String())
			}
		}
	default:
		if u := item.Get("image_versions2.candidates.0.url"); u.Exists() {
			urls = append(urls, u.String())
		}
	}
	return urls
}

// optBool maps an optional upstream boolean onto the tri-state pointer the
// canonical records use.
func optBool(v gjson.Result) *bool {
	if !v.Exists() {
		return nil
	}
	b := v.Bool()
	return &b
}

func optFloat(v gjson.Result) *float64 {
	if !v.Exists() {
		return nil
	}
	f := v.Float()
	return &f
}

// extractUserProfile normalizes any of the upstream user shapes.
func extractUserProfile(v gjson.Result) UserProfile {
	return UserProfile{
		ID:            extractID(v),
		Username:      v.Get("username").String(),
		Fullname:      v.Get("full_name").String(),
		ProfilePicURL: v.Get("profile_pic_url").String(),
		IsPrivate:     optBool(v.Get("is_private")),
		IsVerified:    v.Get("is_verified").Bool(),
	}
}

// extractLicensedMusic reads the music_info sub-object of clips metadata.
func extractLicensedMusic(v gjson.Result) *MusicBasicInfo {
	asset := v.Get("music_asset_info")
	var artist *UserProfile
	if name := asset.Get("display_artist"); name.Exists() && name.String() != "" {
		artist = &UserProfile{Fullname: name.String()}
	}
	return &MusicBasicInfo{
		ID:                asset.Get("audio_cluster_id").String(),
		IsTrendingInClips: v.Get("music_consumption_info.is_trending_in_clips").Bool(),
		Artist:            artist,
		Title:             asset.Get("title").String(),
		DurationInMS:      asset.Get("duration_in_ms").Int(),
		URL:               asset.Get("progressive_download_url").String(),
	}
}

// extractOriginalSound reads the original_sound_info sub-object.
func extractOriginalSound(v gjson.Result) *MusicBasicInfo {
	var artist *UserProfile
	if ig := v.Get("ig_artist"); ig.Exists() {
		p := extractUserProfile(ig)
		// This shape spells fullname without the underscore.
		if f := ig.Get("fullname"); f.Exists() {
			p.Fullname = f.String()
		}
		artist = &p
	}
	return &MusicBasicInfo{
		ID:                v.Get("audio_asset_id").String(),
		IsTrendingInClips: v.Get("consumption_info.is_trending_in_clips").Bool(),
		Artist:            artist,
		Title:             v.Get("original_audio_title").String(),
		DurationInMS:      v.Get("duration_in_ms").Int(),
		URL:               v.Get("progressive_download_url").String(),
	}
}

// extractMusic resolves a post's audio metadata. The audio_type
// discriminator selects the sub-extractor; when it is absent or
// unrecognized, probe for whichever sub-object is present, preferring
// licensed music. No metadata at all means no music, not an error.
func extractMusic(item gjson.Result) *MusicBasicInfo {
	metadata := item.Get("clips_metadata")
	if !metadata.Exists() {
		return nil
	}
	switch metadata.Get("audio_type").String() {
	case "licensed_music":
		return extractLicensedMusic(metadata.Get("music_info"))
	case "original_sounds":
		return extractOriginalSound(metadata.Get("original_sound_info"))
	default:
		if mi := metadata.Get("music_info"); mi.Exists() {
			return extractLicensedMusic(mi)
		}
		if si := metadata.Get("original_sound_info"); si.Exists() {
			return extractOriginalSound(si)
		}
		return nil
	}
}

func extractUsertags(item gjson.Result) []Usertag {
	usertags := []Usertag{}
	for _, tag := range item.Get("usertags.in").Array() {
		var position []float64
		for _, p := range tag.Get("position").Array() {
			position = append(position, p.Float())
		}
		usertags = append(usertags, Usertag{
			User:                  extractUserProfile(tag.Get("user")),
			Position:              position,
			StartTimeInVideoInSec: optFloat(tag.Get("start_time_in_video_in_sec")),
			DurationInVideoInSec:  optFloat(tag.Get("duration_in_video_in_sec")),
		})
	}
	return usertags
}

func extractLocation(item gjson.Result) *Location {
	loc := item.Get("location")
	if !loc.Exists() {
		return nil
	}
	return &Location{
		ID:        extractID(loc),
		ShortName: loc.Get("short_name").String(),
		Name:      loc.Get("name").String(),
		City:      loc.Get("city").String(),
		Lng:       loc.Get("lng").Float(),
		Lat:       loc.Get("lat").Float(),
		Address:   loc.Get("address").String(),
	}
}

func extractCaption(item gjson.Result) *Caption {
	cap := item.Get("caption")
	if !cap.Exists() || cap.Type == gjson.Null {
		return nil
	}
	return &Caption{
		ID:           extractID(cap),
		Text:         cap.Get("text").String(),
		CreatedAtUTC: cap.Get("created_at_utc").Int(),
	}
}

// extractPost assembles one canonical Post from any upstream item variant.
func extractPost(item gjson.Result) (Post, error) {
	mediaType, err := mediaTypeOf(item.Get("media_type").Int(), item.Get("product_type").String())
	if err != nil {
		return Post{}, err
	}

	caption := extractCaption(item)

	// Alt text falls back to the post's own caption; screen readers get
	// something rather than nothing.
	accessibility := ""
	if caption != nil {
		accessibility = caption.Text
	}
	if ac := item.Get("accessibility_caption"); ac.Exists() && ac.Type != gjson.Null {
		accessibility = ac.String()
	}

	return Post{
		ID:                   extractID(item),
		Code:                 item.Get("code").String(),
		User:                 extractUserProfile(item.Get("user")),
		TakenAt:              item.Get("taken_at").Int(),
		HasSharedToFb:        item.Get("has_shared_to_fb").Bool(),
		Usertags:             extractUsertags(item),
		MediaType:            mediaType,
		Caption:              caption,
		AccessibilityCaption: accessibility,
		Location:             extractLocation(item),
		OriginalWidth:        item.Get("original_width").Int(),
		OriginalHeight:       item.Get("original_height").Int(),
		URLs:                 extractPostURLs(item),
		LikeCount:            item.Get("like_count").Int(),
		CommentCount:         item.Get("comment_count").Int(),
		Music:                extractMusic(item),
	}, nil
}

// extractComment normalizes one comment node. created_at_utc is missing in
// some variants; created_at stands in for it.
func extractComment(node gjson.Result, postID string) Comment {
	createdAt := node.Get("created_at").Int()
	if utc := node.Get("created_at_utc"); utc.Exists() {
		createdAt = utc.Int()
	}
	return Comment{
		ID: extractID(node),
		User: UserBasicInfo{
			ID:       extractID(node.Get("user")),
			Username: node.Get("user.username").String(),
		},
		PostID:             postID,
		CreatedAtUTC:       createdAt,
		Status:             node.Get("status").String(),
		ShareEnabled:       node.Get("share_enabled").Bool(),
		IsRankedComment:    node.Get("is_ranked_comment").Bool(),
		Text:               node.Get("text").String(),
		HasTranslation:     node.Get("has_translation").Bool(),
		IsLikedByPostOwner: node.Get("has_liked_comment").Bool(),
		CommentLikeCount:   node.Get("comment_like_count").Int(),
	}
}

// extractHashtagBasicInfo normalizes one hashtag node.
func extractHashtagBasicInfo(node gjson.Result) HashtagBasicInfo {
	return HashtagBasicInfo{
		ID:            extractID(node),
		Name:          node.Get("name").String(),
		PostCount:     node.Get("media_count").Int(),
		ProfilePicURL: node.Get("profile_pic_url").String(),
	}
}
