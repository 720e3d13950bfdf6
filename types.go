package instacrawl

// Canonical output records. These are the stable, versioned shapes the rest
// of the world sees, independent of which upstream JSON variant produced
// them. Every aggregate carries a redundant Count that must equal the length
// of its list; the validator enforces that cross-field invariant.

// UserBasicInfo identifies a user: id plus username.
type UserBasicInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserProfile enriches UserBasicInfo with display fields and account flags.
// IsPrivate is a tri-state: upstream omits it in several shapes.
type UserProfile struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Fullname      string `json:"fullname"`
	ProfilePicURL string `json:"profile_pic_url"`
	IsPrivate     *bool  `json:"is_private"`
	IsVerified    bool   `json:"is_verified"`
}

// UserInfo is the full profile: UserProfile plus engagement counters and bio.
type UserInfo struct {
	UserProfile       `yaml:",inline"`
	FollowerCount     int64  `json:"follower_count"`
	FollowingCount    int64  `json:"following_count"`
	FollowingTagCount int64  `json:"following_tag_count"`
	PostCount         int64  `json:"post_count"`
	Biography         string `json:"biography"`
}

// Usertag marks a tagged user and where/when they appear in the media.
type Usertag struct {
	User                  UserProfile `json:"user"`
	Position              []float64   `json:"position"`
	StartTimeInVideoInSec *float64    `json:"start_time_in_video_in_sec"`
	DurationInVideoInSec  *float64    `json:"duration_in_video_in_sec"`
}

// Location is the place a post was tagged with, if any.
type Location struct {
	ID        string  `json:"id"`
	ShortName string  `json:"short_name"`
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Lng       float64 `json:"lng"`
	Lat       float64 `json:"lat"`
	Address   string  `json:"address"`
}

// Caption is a post's caption.
type Caption struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	CreatedAtUTC int64  `json:"created_at_utc"`
}

// MusicBasicInfo describes the audio attached to a post, whether licensed
// music or an original sound.
type MusicBasicInfo struct {
	ID                string       `json:"id"`
	IsTrendingInClips bool         `json:"is_trending_in_clips"`
	Artist            *UserProfile `json:"artist"`
	Title             string       `json:"title"`
	DurationInMS      int64        `json:"duration_in_ms"`
	URL               string       `json:"url"`
}

// Music adds the audio page's media counters to MusicBasicInfo.
type Music struct {
	MusicBasicInfo `yaml:",inline"`
	ClipsCount     int64 `json:"clips_count"`
	PhotosCount    int64 `json:"photos_count"`
}

// Media type enum values produced by mediaTypeOf.
const (
	MediaTypePhoto = "Photo"
	MediaTypeVideo = "Video"
	MediaTypeIGTV  = "IGTV"
	MediaTypeReel  = "Reel"
	MediaTypeAlbum = "Album"
)

// Post is one published media item of any variant.
type Post struct {
	ID                   string      `json:"id"`
	Code                 string      `json:"code"`
	User                 UserProfile `json:"user"`
	TakenAt              int64       `json:"taken_at"`
	HasSharedToFb        bool        `json:"has_shared_to_fb"`
	Usertags             []Usertag   `json:"usertags"`
	MediaType            string      `json:"media_type" validate:"omitempty,oneof=Photo Video IGTV Reel Album"`
	Caption              *Caption    `json:"caption"`
	AccessibilityCaption string      `json:"accessibility_caption"`
	Location             *Location   `json:"location"`
	OriginalWidth        int64       `json:"original_width"`
	OriginalHeight       int64       `json:"original_height"`
	URLs                 []string    `json:"urls"`
	LikeCount            int64       `json:"like_count"`
	CommentCount         int64       `json:"comment_count"`
	Music                *MusicBasicInfo `json:"music"`
}

// Comment is one comment on a post.
type Comment struct {
	ID                 string        `json:"id"`
	User               UserBasicInfo `json:"user"`
	PostID             string        `json:"post_id"`
	CreatedAtUTC       int64         `json:"created_at_utc"`
	Status             string        `json:"status"`
	ShareEnabled       bool          `json:"share_enabled"`
	IsRankedComment    bool          `json:"is_ranked_comment"`
	Text               string        `json:"text"`
	HasTranslation     bool          `json:"has_translation"`
	IsLikedByPostOwner bool          `json:"is_liked_by_post_owner"`
	CommentLikeCount   int64         `json:"comment_like_count"`
}

// HashtagBasicInfo is a hashtag as it appears in lists and search results.
type HashtagBasicInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PostCount     int64  `json:"post_count"`
	ProfilePicURL string `json:"profile_pic_url"`
}

// Hashtag is the full hashtag page: basic info, trending flag, related tags
// and the embedded top posts.
type Hashtag struct {
	HashtagBasicInfo `yaml:",inline"`
	IsTrending       bool     `json:"is_trending"`
	RelatedTags      []string `json:"related_tags"`
	Subtitle         string   `json:"subtitle"`
	Posts            []Post   `json:"posts"`
}

// LocationBasicInfo is a place reference inside search results.
type LocationBasicInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Place is a located search result entry.
type Place struct {
	Location LocationBasicInfo `json:"location"`
	Subtitle string            `json:"subtitle"`
	Title    string            `json:"title"`
}

// SearchingResultHashtag is a hashtag match with its ranking position.
type SearchingResultHashtag struct {
	Position int64            `json:"position"`
	Hashtag  HashtagBasicInfo `json:"hashtag"`
}

// SearchingResultUser is a user match with its ranking position.
type SearchingResultUser struct {
	Position int64       `json:"position"`
	User     UserProfile `json:"user"`
}

// SearchingResultPlace is a place match with its ranking position.
type SearchingResultPlace struct {
	Position int64 `json:"position"`
	Place    Place `json:"place"`
}

// SearchingResult groups the positioned matches of one keyword search.
type SearchingResult struct {
	Hashtags     []SearchingResultHashtag `json:"hashtags"`
	Users        []SearchingResultUser    `json:"users"`
	Places       []SearchingResultPlace   `json:"places"`
	Personalised bool                     `json:"personalised"`
}

// FriendshipStatus is the two-directional follow relationship between a
// pair of users.
type FriendshipStatus struct {
	Following  bool `json:"following"`
	FollowedBy bool `json:"followed_by"`
}

// Posts is the count-carrying envelope for a post list.
type Posts struct {
	Posts []Post `json:"posts" validate:"dive"`
	Count int    `json:"count"`
}

// Users is the count-carrying envelope for a user list.
type Users struct {
	Users []UserProfile `json:"users"`
	Count int           `json:"count"`
}

// Comments is the count-carrying envelope for a comment list.
type Comments struct {
	Comments []Comment `json:"comments"`
	Count    int       `json:"count"`
}

// HashtagBasicInfos is the count-carrying envelope for a hashtag list.
type HashtagBasicInfos struct {
	Hashtags []HashtagBasicInfo `json:"hashtags"`
	Count    int                `json:"count"`
}

// MusicPosts is the count-carrying envelope for posts sharing one audio
// track, together with the track's metadata.
type MusicPosts struct {
	Posts []Post `json:"posts" validate:"dive"`
	Music Music  `json:"music"`
	Count int    `json:"count"`
}
