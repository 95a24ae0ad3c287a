package handlers

import (
	"github.com/ghuser/bizdir/pkg/validator"
	"github.com/ghuser/bizdir/services/menu/domain/models"
	domainsvcs "github.com/ghuser/bizdir/services/menu/domain/services"
)

func init() {
	mustRegister("menubucket", func(s string) error {
		_, err := models.ParseBucket(s)
		return err
	})
	mustRegister("menuurl", domainsvcs.ValidateURL)
}

func mustRegister(tag string, check func(string) error) {
	if err := validator.RegisterStringRule(tag, check); err != nil {
		panic(err)
	}
}
