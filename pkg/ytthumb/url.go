package ytthumb

import "fmt"

type Thumbnail struct {
	Variant Variant `json:"type"`
	Size    string  `json:"size"`
	URL     string  `json:"url"`
}

func ThumbnailURL(videoId string, v Variant) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoId, v)
}

func EmbedURL(videoId string) string {
	return "https://www.youtube.com/embed/" + videoId
}

// PlayerURL is the autoplaying embed shown inside the overlay.
func PlayerURL(videoId string) string {
	return EmbedURL(videoId) + "?rel=0&autoplay=1"
}

// Gallery returns one thumbnail per variant in display order, or nil for an empty id.
func Gallery(videoId string) []Thumbnail {
	if videoId == "" {
		return nil
	}

	gallery := make([]Thumbnail, 0, variantsLength)
	for _, v := range variants {
		gallery = append(gallery, Thumbnail{
			Variant: v,
			Size:    v.Size(),
			URL:     ThumbnailURL(videoId, v),
		})
	}

	return gallery
}
