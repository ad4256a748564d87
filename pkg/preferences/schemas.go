package preferences

import (
	"fmt"

	"github.com/harborpay/harborpay-backend/pkg/enums"
	pkgerrors "github.com/harborpay/harborpay-backend/pkg/errors"
)

// Preference keys shared across variants.
const (
	KeyServer     = "server"
	KeyTestMode   = "test_mode"
	KeyLogin      = "login"
	KeyPassword   = "password"
	KeyLocationID = "location_id"
)

// Gateway mode values for the server preference.
const (
	ServerTest = "test"
	ServerLive = "live"
)

var variantSchemas = map[enums.Variant]Schema{
	enums.VariantCreditCard: {
		KeyServer:     {Kind: KindString, Default: ServerTest},
		KeyTestMode:   {Kind: KindBool, Default: true},
		KeyLogin:      {Kind: KindString, Default: nil},
		KeyPassword:   {Kind: KindString, Default: nil},
		KeyLocationID: {Kind: KindString, Default: nil},
	},
	enums.VariantStoreCredit: {
		KeyServer: {Kind: KindString, Default: ServerTest},
	},
	// Offline method; nothing to configure.
	enums.VariantCheck: {},
}

func schemaFor(variant enums.Variant) (Schema, error) {
	schema, ok := variantSchemas[variant]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("no preference schema for variant %q", variant))
	}
	return schema, nil
}
