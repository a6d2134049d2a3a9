package roomedit

// sceneCatalog is a small living room shared by several tests.
func sceneCatalog() Catalog {
	return Catalog{
		{ID: "o1", Label: "sofa", Category: CategoryFurniture, BBox: BBox{0.1, 0.1, 0.4, 0.4}},
		{ID: "o2", Label: "lamp", Category: CategoryLighting, BBox: BBox{0.6, 0.1, 0.7, 0.3}},
	}
}

func sceneState() *ImageState {
	return &ImageState{Image: "s3://rooms/s0.png", Catalog: sceneCatalog(), CatalogStatus: CatalogDetected}
}
