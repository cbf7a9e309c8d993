package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/and161185/phonebook/internal/model"
)

// contactInputFlags parses the shared add/edit flag set into a ContactInput.
// withID additionally requires the -id flag (update path). Validation proper
// happens in the contacts store; this only shapes the input.
func contactInputFlags(name string, args []string, withID bool) (model.ContactInput, string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.String("id", "", "contact id (24-hex)")
	contactName := fs.String("name", "", "contact name")
	phone := fs.String("phone", "", "phone number (10 digits)")
	address := fs.String("address", "", "address")
	labelArg := fs.String("label", "", "label (Work, School, Friends, Family)")
	avatarPath := fs.String("avatar", "", "avatar image file")
	_ = fs.Parse(args)

	if withID && *id == "" {
		return model.ContactInput{}, "", fmt.Errorf("need -id")
	}

	label, err := model.ParseLabel(*labelArg)
	if err != nil {
		return model.ContactInput{}, "", err
	}
	if label == model.LabelAll {
		return model.ContactInput{}, "", fmt.Errorf("a contact cannot carry the All label")
	}

	in := model.ContactInput{
		Name:        *contactName,
		PhoneNumber: *phone,
		Address:     *address,
		Label:       label,
	}
	if *avatarPath != "" {
		data, err := os.ReadFile(*avatarPath)
		if err != nil {
			return model.ContactInput{}, "", fmt.Errorf("read avatar: %w", err)
		}
		in.Avatar = data
		in.AvatarName = filepath.Base(*avatarPath)
	}
	return in, *id, nil
}
