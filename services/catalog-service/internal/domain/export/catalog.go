package export

import "fmt"

// Catalog статические данные генераторов выгрузок.
// Собирается один раз при старте и передается экспортерам по значению.
type Catalog struct {
	// HandleSuffix дописывается к handle карточки Shopify
	HandleSuffix string
	// TitleSuffix дописывается к названию карточки Shopify
	TitleSuffix string
	// ItemNameSuffix дописывается к item_name строк Amazon
	ItemNameSuffix string
	// GalleryImages картинки строк 2-5 плоского файла, порядок важен
	GalleryImages []string
	// Variants дочерние варианты таблицы Amazon, порядок важен
	Variants []string
}

const galleryImagesCount = 4

// DefaultCatalog каталог боди для новорожденных
func DefaultCatalog() Catalog {
	return Catalog{
		HandleSuffix:   "-baby-boy-girl-clothes-bodysuit-funny-cute",
		TitleSuffix:    " - Baby Boy Girl Clothes Bodysuit Funny Cute",
		ItemNameSuffix: " - Baby Boy Girl Clothes Bodysuit Funny",
		GalleryImages: []string{
			"https://cdn.shopify.com/s/files/1/0545/2018/5017/files/26363115-65e5-4936-b422-aca4c5535ae1-copy.jpg?v=1741427541",
			"https://cdn.shopify.com/s/files/1/0545/2018/5017/files/a050c7dc-d0d5-4798-acdd-64b5da3cc70c-copy.jpg?v=1741427541",
			"https://cdn.shopify.com/s/files/1/0545/2018/5017/files/7159a2aa-6595-4f28-8c53-9fe803487504-copy.jpg?v=1741427541",
			"https://cdn.shopify.com/s/files/1/0545/2018/5017/files/700cea5a-034d-4520-99ee-218911d7e905-copy.jpg?v=1741427541",
		},
		Variants: []string{
			"Newborn White Short Sleeve",
			"Newborn White Long Sleeve",
			"Newborn Natural Short Sleeve",
			"0-3M White Short Sleeve",
			"0-3M White Long Sleeve",
			"0-3M Pink Short Sleeve",
			"0-3M Blue Short Sleeve",
			"3-6M White Short Sleeve",
			"3-6M White Long Sleeve",
			"3-6M Blue Short Sleeve",
			"3-6M Pink Short Sleeve",
			"6M Natural Short Sleeve",
			"6-9M White Short Sleeve",
			"6-9M White Long Sleeve",
			"6-9M Pink Short Sleeve",
			"6-9M Blue Short Sleeve",
			"12M White Short Sleeve",
			"12M White Long Sleeve",
			"12M Natural Short Sleeve",
			"12M Pink Short Sleeve",
			"12M Blue Short Sleeve",
			"18M White Short Sleeve",
			"18M White Long Sleeve",
			"18M Natural Short Sleeve",
			"24M White Short Sleeve",
			"24M White Long Sleeve",
			"24M Natural Short Sleeve",
		},
	}
}

// Validate проверяет, что списки пригодны для генерации
func (c Catalog) Validate() error {
	if len(c.GalleryImages) != galleryImagesCount {
		return fmt.Errorf("catalog must have %d gallery images, got %d", galleryImagesCount, len(c.GalleryImages))
	}
	if len(c.Variants) == 0 {
		return fmt.Errorf("catalog must have at least one variant")
	}
	return nil
}
