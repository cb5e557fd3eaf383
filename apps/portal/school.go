package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/school"
)

func (cli *commandLine) school(ctx context.Context, sess auth.Session, args []string) error {
	if err := checkAccess(sess, routeSchool); err != nil {
		return err
	}
	sub, args := subcommand(args)
	switch sub {
	case "":
		if err := parseFlags(cli.newFlagSet(routeSchool), args); err != nil {
			return err
		}
		return cli.page(ctx, sess, routeSchool, func(w io.Writer) error {
			info, err := cli.schoolSvc.Get(ctx)
			if err != nil {
				return err
			}
			return writeSchool(w, info)
		})
	case "update":
		return cli.updateSchool(ctx, args)
	default:
		cli.printUsage()
		return errHelp
	}
}

func writeSchool(w io.Writer, info school.Info) error {
	if err := details(w,
		"Name", info.Name,
		"Address", info.Address,
		"Email", info.Email,
		"Phone", info.Phone,
		"Website", info.Website,
		"Logo", info.Logo,
	); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "\nGallery (%d)\n", len(info.Gallery))
	for _, img := range info.Gallery {
		_, _ = fmt.Fprintln(w, "  "+img)
	}
	return nil
}

func (cli *commandLine) updateSchool(ctx context.Context, args []string) error {
	updateCmd := cli.newFlagSet("school update")
	var data school.UpdateInfo
	var gallery string
	updateCmd.StringVar(&data.Name, "name", "", "The school name.")
	updateCmd.StringVar(&data.Logo, "logo", "", "The logo URL.")
	updateCmd.StringVar(&gallery, "gallery", "", "Gallery image URLs, comma separated. Replaces the current ones.")
	updateCmd.StringVar(&data.Address, "address", "", "The postal address.")
	updateCmd.StringVar(&data.Email, "email", "", "The contact email.")
	updateCmd.StringVar(&data.Phone, "phone", "", "The contact phone number.")
	updateCmd.StringVar(&data.Website, "website", "", "The website URL.")
	if err := parseFlags(updateCmd, args); err != nil {
		return err
	}
	if updateCmd.NFlag() == 0 {
		updateCmd.Usage()
		return errHelp
	}
	data.Gallery = splitList(gallery)

	info, err := cli.schoolSvc.Update(ctx, data)
	if err != nil {
		return err
	}
	cli.printf("School profile updated: %s.\n", strings.TrimSpace(info.Name))
	return nil
}
