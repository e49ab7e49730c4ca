package inventory

import (
	"context"
	"fmt"
	"strings"
)

// describeDevice monta a identificação textual gravada nos termos.
func describeDevice(d Device, modelName string) string {
	if modelName == "" {
		modelName = "Dispositivo"
	}
	if tag := strings.TrimSpace(d.AssetTag); tag != "" {
		return fmt.Sprintf("[TAG: %s] %s", tag, modelName)
	}
	return fmt.Sprintf("[S/N: %s] %s", d.SerialNumber, modelName)
}

func describeSim(s SimCard) string {
	return fmt.Sprintf("[CHIP: %s]", s.PhoneNumber)
}

// deviceDetails resolve o nome do modelo no momento do evento. Um modelo
// excluído não impede a movimentação.
func deviceDetails(ctx context.Context, tx Tx, d Device) (string, error) {
	model, err := tx.GetCatalogItem(ctx, CatalogModel, d.ModelID)
	switch {
	case err == nil:
		return describeDevice(d, model.Name), nil
	case KindOf(err) == KindNotFound:
		return describeDevice(d, ""), nil
	default:
		return "", err
	}
}
