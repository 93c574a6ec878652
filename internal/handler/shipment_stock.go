package handler

import (
	"errors"
	"strconv"

	"gorm.io/gorm"

	"loyalty-platform/internal/model"
)

// applyShipmentDelivery performs the stock side of marking a shipment
// delivered. Whichever side sets the status first (admin status update or
// business confirmation) applies it; the other side sees the shipment
// already delivered and leaves stock alone.
func applyShipmentDelivery(tx *gorm.DB, shipment *model.Shipment) error {
	if shipment.Type == model.ShipmentTypeAdmin {
		return materializeCollection(tx, shipment, shipment.BusinessID)
	}
	return restockProducts(tx, shipment)
}

// materializeCollection turns a delivered admin shipment into a live
// business-owned collection. The collection is created on first delivery of
// the set; repeat deliveries of the same set top up the existing products.
func materializeCollection(tx *gorm.DB, shipment *model.Shipment, businessID uint) error {
	var collection model.Collection
	err := tx.Where("business_id = ? AND name = ?", businessID, shipment.CollectionSetName).First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		collection = model.Collection{
			Name:       shipment.CollectionSetName,
			BusinessID: &businessID,
			IsActive:   true,
		}
		if err := tx.Create(&collection).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	for _, item := range shipment.Products {
		var product model.PointProduct
		err := tx.Where("business_id = ? AND collection_id = ? AND name = ?", businessID, collection.ID, item.Name).
			First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			product = model.PointProduct{
				Name:           item.Name,
				Description:    item.Description,
				CollectionID:   collection.ID,
				CollectionName: collection.Name,
				PricePoint:     item.PricePoint,
				Stock:          item.Quantity,
				ImageURL:       item.ImageURL,
				BusinessID:     &businessID,
				IsActive:       true,
			}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&product).UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			return err
		}
	}
	return nil
}

// restockProducts applies a delivered restock shipment to the products its
// manifest references by id.
func restockProducts(tx *gorm.DB, shipment *model.Shipment) error {
	for _, item := range shipment.Products {
		id, err := strconv.ParseUint(item.ProductID, 10, 32)
		if err != nil {
			continue
		}
		res := tx.Model(&model.PointProduct{}).
			Where("id = ? AND business_id = ?", uint(id), shipment.BusinessID).
			UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
	}
	return nil
}
