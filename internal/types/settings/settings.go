package settings

import "github.com/tangerinesoft/photo-service/internal/types/photos"

// Defaults lists the public site settings and their values when unset.
var Defaults = map[string]string{
	"site_title":      "TANGERINE",
	"site_subtitle":   "",
	"contact_email":   "",
	"weibo_url":       "",
	"wechat_id":       "",
	"xiaohongshu_url": "",
	"bilibili_url":    "",
	"douyin_url":      "",
}

// StatSiteVisits is the site_stats key incremented on every gallery visit.
const StatSiteVisits = "site_visits"

// WithDefaults returns the known settings, filling unset keys from Defaults.
// Unknown keys are dropped.
func WithDefaults(stored map[string]string) map[string]string {
	out := make(map[string]string, len(Defaults))
	for k, v := range Defaults {
		if s, ok := stored[k]; ok {
			v = s
		}
		out[k] = v
	}
	return out
}

// Stats is the admin dashboard summary.
type Stats struct {
	PhotoCount        int64          `json:"photo_count"`
	VisiblePhotoCount int64          `json:"visible_photo_count"`
	CategoryCount     int64          `json:"category_count"`
	TotalViews        int64          `json:"total_views"`
	TotalDownloads    int64          `json:"total_downloads"`
	StorageBytes      int64          `json:"storage_bytes"`
	SiteVisits        int64          `json:"site_visits"`
	TopPhotos         []photos.Photo `json:"top_photos"`
}
