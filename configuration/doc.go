// Package configuration resolves endpoints and credentials for QCS.
//
// Settings come from settings.toml and credentials from secrets.toml, both
// under ~/.qcs unless QCS_SETTINGS_FILE_PATH or QCS_SECRETS_FILE_PATH say
// otherwise. QCS_PROFILE_NAME selects a profile other than the file's
// default_profile_name, and QCS_SETTINGS_APPLICATIONS_QVM_URL and
// QCS_SETTINGS_APPLICATIONS_QUILC_URL override the profile's endpoints.
//
//	cfg, err := configuration.Load()
//	if err != nil {
//	    return err
//	}
//	// after a 401 from the API
//	if err := cfg.Refresh(ctx); err != nil {
//	    return err
//	}
package configuration
