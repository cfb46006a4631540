package post

import (
	"encoding/json"
	"testing/fstest"
)

func metaJSON(urlPath, published, updated string, tags ...string) string {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(map[string]any{
		"title":              "Title of " + urlPath,
		"urlPath":            urlPath,
		"description":        "A post about " + urlPath,
		"teaser":             "Short teaser",
		"imagePath":          "",
		"tags":               tags,
		"additionalMetaTags": []any{},
		"publishDate":        published,
		"lastUpdatedDate":    updated,
	})
	if err != nil {
		panic(err)
	}
	return string(b)
}

func addPost(fsys fstest.MapFS, folder, meta, body string) {
	fsys["posts/"+folder+"/"+MetadataFile] = &fstest.MapFile{Data: []byte(meta)}
	fsys["posts/"+folder+"/"+ContentFile] = &fstest.MapFile{Data: []byte(body)}
}

func newPost(folder, urlPath, published string, tags ...string) *Post {
	return &Post{
		Folder: folder,
		Meta: Metadata{
			Title:           "Title of " + urlPath,
			UrlPath:         urlPath,
			Tags:            tags,
			PublishDate:     MustDate(published),
			LastUpdatedDate: MustDate(published),
		},
		Body: "# " + urlPath,
	}
}
